package forecast

import (
	"math"
	"time"

	"tariffpilot/internal/core/domain"
)

// HourlyConsumptionEstimator estimates the household energy consumed during
// the hour starting at the given instant.
type HourlyConsumptionEstimator interface {
	EnergyAt(hourStart time.Time) domain.EnergyKwh
}

// RegularConsumption models the non-HVAC daily consumption pattern. Away
// mode flattens the profile to a low constant; otherwise the hour of day
// selects the day or evening level. Cross-midnight evening windows are
// handled by hour of day, not calendar day.
type RegularConsumption struct {
	AwayMode         bool
	EveningStartHour int
	Away             domain.EnergyKwh
	Day              domain.EnergyKwh
	Evening          domain.EnergyKwh
}

func (r RegularConsumption) EnergyAt(hourStart time.Time) domain.EnergyKwh {
	if r.AwayMode {
		return r.Away
	}
	if hourStart.Hour() >= r.EveningStartHour {
		return r.Evening
	}
	return r.Day
}

// HeatingConsumption models heat pump space-heating consumption from a
// building heat-loss coefficient and a COP curve corrected for outdoor
// temperature and evaporator frosting. It contributes nothing unless the
// heat pump is in heating mode with eco off.
type HeatingConsumption struct {
	HeatingMode      string
	EcoMode          bool
	TempIndoor       domain.Celsius
	Weather          Weather
	CopAt7C          float64
	HeatLossKwPerC   float64
	TempOutFallback  domain.Celsius
	HumidityFallback float64
}

func (h HeatingConsumption) EnergyAt(hourStart time.Time) domain.EnergyKwh {
	if h.HeatingMode != domain.HvacModeHeat || h.EcoMode {
		return 0
	}

	tempOut := h.TempOutFallback
	humidity := h.HumidityFallback
	if w := h.Weather.FindByDatetime(hourStart); w != nil {
		tempOut = w.Temperature
		humidity = w.Humidity
	}

	tDiff := float64(h.TempIndoor.Sub(tempOut))
	if tDiff <= 0 {
		return 0
	}
	heatLossKwh := h.HeatLossKwPerC * tDiff

	tempCoeff := math.Max(0.5, 1+(float64(tempOut)-7)*0.033)
	cop := h.CopAt7C * tempCoeff * frostPenalty(float64(tempOut), humidity)

	return domain.Kwh(heatLossKwh / cop)
}

// frostPenalty degrades the COP when evaporator frosting is likely: outdoor
// temperature in [0, 7] with humidity above 70%. Severity peaks at 3.5 degC.
func frostPenalty(tempOut, humidity float64) float64 {
	if tempOut < 0 || tempOut > 7 || humidity <= 70 {
		return 1
	}
	severity := (3.5 - math.Abs(tempOut-3.5)) / 3.5
	humFactor := (humidity - 70) / (100 - 70)
	return 1 - 0.15*severity*humFactor
}

// Consumption composes independent hourly estimators, summing their
// energies hour by hour.
type Consumption struct {
	parts []HourlyConsumptionEstimator
}

func NewConsumption(parts ...HourlyConsumptionEstimator) Consumption {
	return Consumption{parts: parts}
}

// Hourly returns the composed consumption for each whole hour of
// [start, start+hours). Start is aligned down to the hour.
func (c Consumption) Hourly(start time.Time, hours int) []domain.HourlyConsumptionEnergy {
	hourStart := start.Truncate(time.Hour)
	out := make([]domain.HourlyConsumptionEnergy, 0, hours)
	for i := 0; i < hours; i++ {
		var total domain.EnergyKwh
		for _, part := range c.parts {
			total = total.Add(part.EnergyAt(hourStart))
		}
		out = append(out, domain.HourlyConsumptionEnergy{
			Period: domain.HourlyPeriodOf(hourStart),
			Energy: total,
		})
		hourStart = hourStart.Add(time.Hour)
	}
	return out
}

// EstimateEnergyKwh sums the composed consumption over [start, start+hours).
func (c Consumption) EstimateEnergyKwh(start time.Time, hours int) domain.EnergyKwh {
	var total domain.EnergyKwh
	for _, item := range c.Hourly(start, hours) {
		total = total.Add(item.Energy)
	}
	return total
}

// ensure interface compliance
var _ HourlyConsumptionEstimator = RegularConsumption{}
var _ HourlyConsumptionEstimator = HeatingConsumption{}
