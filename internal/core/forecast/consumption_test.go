package forecast

import (
	"testing"
	"time"

	"tariffpilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regular() RegularConsumption {
	return RegularConsumption{
		EveningStartHour: 17,
		Away:             domain.Kwh(0.3),
		Day:              domain.Kwh(0.5),
		Evening:          domain.Kwh(1.2),
	}
}

func TestRegularConsumptionProfile(t *testing.T) {
	r := regular()
	assert.EqualValues(t, 0.5, r.EnergyAt(hourAt(10)))
	assert.EqualValues(t, 1.2, r.EnergyAt(hourAt(17)))
	assert.EqualValues(t, 1.2, r.EnergyAt(hourAt(23)))

	r.AwayMode = true
	assert.EqualValues(t, 0.3, r.EnergyAt(hourAt(10)))
	assert.EqualValues(t, 0.3, r.EnergyAt(hourAt(20)))
}

func heatingModel(weather Weather) HeatingConsumption {
	return HeatingConsumption{
		HeatingMode:      domain.HvacModeHeat,
		TempIndoor:       domain.Celsius(20),
		Weather:          weather,
		CopAt7C:          3.5,
		HeatLossKwPerC:   0.15,
		TempOutFallback:  domain.Celsius(7),
		HumidityFallback: 60,
	}
}

func weatherAt(hour int, temp domain.Celsius, humidity float64) Weather {
	return NewWeather([]domain.HourlyWeather{{
		Period:      domain.HourlyPeriodOf(hourAt(hour)),
		Temperature: temp,
		Humidity:    humidity,
	}})
}

func TestHeatingConsumptionInactiveModes(t *testing.T) {
	h := heatingModel(NewWeather(nil))

	h.HeatingMode = domain.HvacModeOff
	assert.EqualValues(t, 0, h.EnergyAt(hourAt(10)))

	h.HeatingMode = domain.HvacModeHeat
	h.EcoMode = true
	assert.EqualValues(t, 0, h.EnergyAt(hourAt(10)))
}

func TestHeatingConsumptionAtReferencePoint(t *testing.T) {
	// at 7 degC outdoor the COP corrections are neutral
	h := heatingModel(weatherAt(10, 7, 50))

	// heat loss 0.15*(20-7) = 1.95 kW over the COP of 3.5
	assert.InDelta(t, 1.95/3.5, float64(h.EnergyAt(hourAt(10))), 1e-9)
}

func TestHeatingConsumptionUsesFallbackOutsideForecast(t *testing.T) {
	h := heatingModel(NewWeather(nil))
	assert.InDelta(t, 1.95/3.5, float64(h.EnergyAt(hourAt(10))), 1e-9)
}

func TestHeatingConsumptionFrostPenalty(t *testing.T) {
	// worst case frosting: 3.5 degC and saturated air
	h := heatingModel(weatherAt(10, 3.5, 100))

	heatLoss := 0.15 * (20 - 3.5)
	tempCoeff := 1 + (3.5-7)*0.033
	cop := 3.5 * tempCoeff * 0.85
	assert.InDelta(t, heatLoss/cop, float64(h.EnergyAt(hourAt(10))), 1e-9)

	// same temperature but dry air: no penalty
	dry := heatingModel(weatherAt(10, 3.5, 60))
	assert.InDelta(t, heatLoss/(3.5*tempCoeff), float64(dry.EnergyAt(hourAt(10))), 1e-9)
}

func TestHeatingConsumptionWarmOutdoor(t *testing.T) {
	h := heatingModel(weatherAt(10, 22, 50))
	assert.EqualValues(t, 0, h.EnergyAt(hourAt(10)), "no heating demand above indoor temperature")
}

func TestCompositeConsumptionSumsParts(t *testing.T) {
	c := NewConsumption(regular(), heatingModel(weatherAt(10, 7, 50)))

	items := c.Hourly(hourAt(10).Add(20*time.Minute), 2) // 10:20 aligns down to 10:00
	require.Len(t, items, 2)
	assert.Equal(t, hourAt(10), items[0].Period.Start())
	assert.InDelta(t, 0.5+1.95/3.5, float64(items[0].Energy), 1e-9)
	// hour 11 is outside the weather forecast, COP falls back to neutral
	assert.InDelta(t, 0.5+1.95/3.5, float64(items[1].Energy), 1e-9)

	total := c.EstimateEnergyKwh(hourAt(10), 2)
	assert.InDelta(t, float64(items[0].Energy)+float64(items[1].Energy), float64(total), 1e-9)
}
