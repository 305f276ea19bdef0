package service

import (
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/forecast"
	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

// END_HOUR closes the daylight planning horizon: after 16:00 there is no
// meaningful PV production left to divert.
const END_HOUR = 16

// DefaultStorageModeEstimator decides between self-use and feed-in priority
// for the remaining daylight window. Export wins only when the spot price is
// attractive, the battery is comfortably above its reserve, and solar alone
// will fill it anyway.
type DefaultStorageModeEstimator struct {
	BatteryCapacity        domain.EnergyKwh
	ReserveSocMin          domain.BatterySoc
	ReserveSocMargin       domain.BatterySoc
	PvExportMinPriceMargin domain.EnergyPrice
	Forecasts              forecast.Factory
	Logger                 *zap.Logger
}

func (e *DefaultStorageModeEstimator) Estimate(state domain.State, now time.Time) *domain.StorageMode {
	target := e.estimateMode(state, now)
	if target == state.StorageMode {
		return nil
	}
	return &target
}

func (e *DefaultStorageModeEstimator) estimateMode(state domain.State, now time.Time) domain.StorageMode {
	nowHour := now.Truncate(time.Hour)
	hours := END_HOUR - nowHour.Hour()
	if hours <= 0 {
		return domain.StorageModeSelfUse
	}

	prices := e.Forecasts.Price(state)
	minHour := prices.FindMinHour(nowHour, hours)
	if minHour == nil {
		e.Logger.Debug("storage_mode: no price data in horizon")
		return domain.StorageModeSelfUse
	}
	if !state.CurrentPrice.GreaterThan(minHour.Price.Add(e.PvExportMinPriceMargin)) {
		return domain.StorageModeSelfUse
	}

	if state.BatterySoc <= e.ReserveSocMin.AddSat(e.ReserveSocMargin) {
		return domain.StorageModeSelfUse
	}

	consumptions := e.Forecasts.Consumption(state).Hourly(nowHour, hours)
	productions := e.Forecasts.Production(state).Hourly(nowHour, hours)
	surplus := TotalSurplus(consumptions, productions)
	maxSoc := EstimateBatteryMaxSoc(surplus, state.BatterySoc, e.BatteryCapacity)
	if maxSoc < 100 {
		return domain.StorageModeSelfUse
	}

	e.Logger.Info("storage_mode: conditions met for grid export",
		zap.String("current_price", state.CurrentPrice.String()),
		zap.String("min_hour_price", minHour.Price.String()),
		zap.Float64("surplus_kwh", float64(surplus)))
	return domain.StorageModeFeedInPriority
}

// ensure interface compliance
var _ port.StorageModeEstimator = (*DefaultStorageModeEstimator)(nil)
