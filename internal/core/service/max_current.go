package service

import (
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

// DefaultBatteryMaxCurrentEstimator sets the inverter charge/discharge
// current limits by time window: raised charge current during the night low
// tariff, full discharge current inside an enabled slot-1 window, nominal
// otherwise.
type DefaultBatteryMaxCurrentEstimator struct {
	NightChargeWindow  domain.DailyWindow
	NightChargeCurrent domain.BatteryCurrent
	NominalCurrent     domain.BatteryCurrent
	MaximumCurrent     domain.BatteryCurrent
	Logger             *zap.Logger
}

func (e *DefaultBatteryMaxCurrentEstimator) EstimateChargeCurrent(state domain.State, now time.Time) *domain.BatteryCurrent {
	target := e.NominalCurrent
	if e.NightChargeWindow.Contains(now) {
		target = e.NightChargeCurrent
	}
	if target == state.MaxChargeCurrent {
		return nil
	}
	return &target
}

func (e *DefaultBatteryMaxCurrentEstimator) EstimateDischargeCurrent(state domain.State, now time.Time) *domain.BatteryCurrent {
	target := e.NominalCurrent
	slot1 := state.DischargeSlots[0]
	if slot1.Enabled && slot1.Window.Contains(now) {
		target = e.MaximumCurrent
	}
	if target == state.MaxDischargeCurrent {
		return nil
	}
	e.Logger.Debug("max_current: discharge limit change",
		zap.Float64("target_a", float64(target)))
	return &target
}

// ensure interface compliance
var _ port.BatteryMaxCurrentEstimator = (*DefaultBatteryMaxCurrentEstimator)(nil)
