package service

import (
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/forecast"
	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

// DefaultBatteryReserveSocEstimator plans the inverter reserve SoC at the
// two transitions of the time-of-use tariff. At night it sizes the reserve
// the battery must hold at the end of the night low tariff to serve the
// morning peak; midday it sizes the reserve needed at the start of the
// evening peak. The two plans are deliberately separate: their deficit and
// surplus formulas and their gates are not symmetric.
type DefaultBatteryReserveSocEstimator struct {
	BatteryCapacity  domain.EnergyKwh
	ReserveSocMin    domain.BatterySoc
	ReserveSocMargin domain.BatterySoc
	ReserveSocMax    domain.BatterySoc
	NightLowTariff   domain.DailyWindow
	DayLowTariff     domain.DailyWindow
	Forecasts        forecast.Factory
	Logger           *zap.Logger
}

func (e *DefaultBatteryReserveSocEstimator) Estimate(state domain.State, now time.Time) *domain.BatterySoc {
	switch {
	case e.NightLowTariff.Contains(now):
		return e.planMorningPeak(state, now)
	case e.DayLowTariff.Contains(now):
		return e.planEveningPeak(state, now)
	default:
		return e.suppressNoChange(state, e.ReserveSocMin)
	}
}

// planMorningPeak sizes the reserve needed at the upcoming end of the night
// low tariff so the morning high-tariff block can be served from battery.
func (e *DefaultBatteryReserveSocEstimator) planMorningPeak(state domain.State, now time.Time) *domain.BatterySoc {
	morningStart := e.NightLowTariff.End.On(now)
	if !now.Before(morningStart) {
		morningStart = morningStart.AddDate(0, 0, 1)
	}
	hours := e.morningPeakHours()

	consumptions := e.Forecasts.Consumption(state).Hourly(morningStart, hours)
	productions := e.Forecasts.Production(state).Hourly(morningStart, hours)
	reserve := MaximumCumulativeDeficit(consumptions, productions)

	target := EstimateBatteryReserveSoc(reserve, e.BatteryCapacity,
		e.ReserveSocMin, e.ReserveSocMargin, e.ReserveSocMax).Round()

	// lowering the reserve during the night would just cycle the battery
	if target < state.BatteryReserveSoc {
		e.Logger.Debug("reserve_soc@night: target below configured reserve, keeping",
			zap.Float64("target", float64(target)),
			zap.Float64("configured", float64(state.BatteryReserveSoc)))
		return nil
	}
	e.Logger.Info("reserve_soc@night: morning peak plan",
		zap.Time("morning_start", morningStart),
		zap.Float64("deficit_kwh", float64(reserve)),
		zap.Float64("target", float64(target)))
	return e.suppressNoChange(state, target)
}

// planEveningPeak sizes the reserve the battery must hold when the day low
// tariff ends, net of the solar surplus still expected this afternoon.
func (e *DefaultBatteryReserveSocEstimator) planEveningPeak(state domain.State, now time.Time) *domain.BatterySoc {
	nowHour := now.Truncate(time.Hour)
	eveningStart := e.DayLowTariff.End.On(now)
	afternoonHours := int(eveningStart.Sub(nowHour).Hours())

	consumption := e.Forecasts.Consumption(state)
	production := e.Forecasts.Production(state)

	surplus := TotalSurplus(
		consumption.Hourly(nowHour, afternoonHours),
		production.Hourly(nowHour, afternoonHours))

	peakHours := e.eveningPeakHours()
	eveningDeficit := MaximumCumulativeDeficit(
		consumption.Hourly(eveningStart, peakHours),
		production.Hourly(eveningStart, peakHours))

	reserve := eveningDeficit.SubSat(surplus)
	target := EstimateBatteryReserveSoc(reserve, e.BatteryCapacity,
		e.ReserveSocMin, e.ReserveSocMargin, e.ReserveSocMax).Round()

	if EstimateBatteryMaxSoc(surplus, state.BatterySoc, e.BatteryCapacity) >= target {
		e.Logger.Debug("reserve_soc@day: solar alone covers the evening peak")
		return nil
	}
	if state.BatterySoc >= target {
		return nil
	}
	if target < state.BatteryReserveSoc {
		return nil
	}
	e.Logger.Info("reserve_soc@day: evening peak plan",
		zap.Float64("surplus_kwh", float64(surplus)),
		zap.Float64("evening_deficit_kwh", float64(eveningDeficit)),
		zap.Float64("target", float64(target)))
	return e.suppressNoChange(state, target)
}

func (e *DefaultBatteryReserveSocEstimator) suppressNoChange(state domain.State, target domain.BatterySoc) *domain.BatterySoc {
	target = target.Round()
	if target == state.BatteryReserveSoc {
		return nil
	}
	return &target
}

// morningPeakHours is the length of the morning high-tariff block, from the
// end of the night low tariff to the start of the day low tariff.
func (e *DefaultBatteryReserveSocEstimator) morningPeakHours() int {
	return wallClockHoursBetween(e.NightLowTariff.End, e.DayLowTariff.Start)
}

// eveningPeakHours is the length of the evening high-tariff block, from the
// end of the day low tariff to the start of the night low tariff.
func (e *DefaultBatteryReserveSocEstimator) eveningPeakHours() int {
	return wallClockHoursBetween(e.DayLowTariff.End, e.NightLowTariff.Start)
}

func wallClockHoursBetween(from, to domain.TimeOfDay) int {
	minutes := to.Minutes() - from.Minutes()
	if minutes < 0 {
		minutes += 24 * 60
	}
	return minutes / 60
}

// ensure interface compliance
var _ port.BatteryReserveSocEstimator = (*DefaultBatteryReserveSocEstimator)(nil)
