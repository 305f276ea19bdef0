package service

import (
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/forecast"
	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

// DefaultBatteryDischargeSlotEstimator picks the most profitable hour of a
// planning window and sizes a grid-discharge current to the battery energy
// left after reserving the window's own consumption.
type DefaultBatteryDischargeSlotEstimator struct {
	BatteryCapacity       domain.EnergyKwh
	BatteryVoltage        domain.BatteryVoltage
	BatteryMaximumCurrent domain.BatteryCurrent
	ReserveSocMin         domain.BatterySoc
	ReserveSocMargin      domain.BatterySoc
	ExportThresholdPrice  domain.EnergyPrice
	ExportThresholdEnergy domain.EnergyKwh
	Forecasts             forecast.Factory
	Logger                *zap.Logger
}

func (e *DefaultBatteryDischargeSlotEstimator) Estimate(state domain.State, windowStart time.Time, windowHours int) []domain.BatteryDischargeSlot {
	prices := e.Forecasts.Price(state)
	peaks := prices.FindPeakPeriods(windowStart, windowHours, e.ExportThresholdPrice)
	if len(peaks) == 0 {
		e.Logger.Debug("discharge_slot: no hour above export threshold price")
		return nil
	}

	// ties keep the chronologically first hour
	best := peaks[0]
	for _, peak := range peaks[1:] {
		if peak.Price.GreaterThan(best.Price) {
			best = peak
		}
	}

	production := e.Forecasts.Production(state).EstimateEnergyKwh(windowStart, windowHours)
	consumption := e.Forecasts.Consumption(state).EstimateEnergyKwh(windowStart, windowHours)
	reserve := consumption.SubSat(production)

	surplus := EstimateBatterySurplusEnergy(reserve, state.BatterySoc,
		e.BatteryCapacity, e.ReserveSocMin, e.ReserveSocMargin)
	if surplus <= e.ExportThresholdEnergy {
		e.Logger.Debug("discharge_slot: surplus below export threshold",
			zap.Float64("surplus_kwh", float64(surplus)))
		return nil
	}

	current := surplus.ToCurrent(e.BatteryVoltage, 1)
	if current > e.BatteryMaximumCurrent {
		current = e.BatteryMaximumCurrent
	}

	slot := domain.BatteryDischargeSlot{
		Start:   best.Period.Start(),
		End:     best.Period.End(),
		Current: current,
	}
	e.Logger.Info("discharge_slot: planned",
		zap.Time("start", slot.Start),
		zap.String("price", best.Price.String()),
		zap.Float64("surplus_kwh", float64(surplus)),
		zap.Float64("current_a", float64(slot.Current)))
	return []domain.BatteryDischargeSlot{slot}
}

// ensure interface compliance
var _ port.BatteryDischargeSlotEstimator = (*DefaultBatteryDischargeSlotEstimator)(nil)
