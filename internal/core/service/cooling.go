package service

import (
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

// DefaultCoolingEstimator mirrors the heating estimator for cooling: the
// boost window lowers the target to pre-cool on cheap energy. Active only
// while the heat pump is in cooling mode.
type DefaultCoolingEstimator struct {
	TargetEcoOn       domain.Celsius
	TargetEcoOff      domain.Celsius
	BoostWindowEcoOn  domain.DailyWindow
	BoostWindowEcoOff domain.DailyWindow
	BoostDelta        domain.Celsius
	Logger            *zap.Logger
}

func (e *DefaultCoolingEstimator) EstimateTargetTemperature(state domain.HvacState, now time.Time) *domain.Celsius {
	if state.HeatingMode != domain.HvacModeCool {
		return nil
	}
	target := e.TargetEcoOff
	window := e.BoostWindowEcoOff
	if state.EcoMode {
		target = e.TargetEcoOn
		window = e.BoostWindowEcoOn
	}
	if window.Contains(now) {
		target = target.Sub(e.BoostDelta)
	}
	target = target.Add(state.TemperatureAdjustment).Round()
	if target == state.CoolingTarget {
		return nil
	}
	e.Logger.Debug("cooling: target change", zap.Float64("target", float64(target)))
	return &target
}

// ensure interface compliance
var _ port.CoolingEstimator = (*DefaultCoolingEstimator)(nil)
