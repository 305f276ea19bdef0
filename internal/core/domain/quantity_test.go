package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnergySubSaturatesAtZero(t *testing.T) {
	assert.EqualValues(t, 0, Kwh(2).SubSat(Kwh(5)))
	assert.EqualValues(t, 3, Kwh(5).SubSat(Kwh(2)))
	assert.EqualValues(t, 0, Kwh(5).SubSat(Kwh(5)))
}

func TestNegativeEnergyPanics(t *testing.T) {
	assert.Panics(t, func() { Kwh(-0.1) })
	assert.Panics(t, func() { Kwh(1).MulFloat(-1) })
	assert.Panics(t, func() { Kwh(1).DivFloat(0) })
}

func TestEnergyToCurrent(t *testing.T) {
	// 4.8 kWh over 1 hour at 48 V is 100 A
	assert.InDelta(t, 100, float64(Kwh(4.8).ToCurrent(Volts(48), 1)), 1e-9)
	// twice the time, half the current
	assert.InDelta(t, 50, float64(Kwh(4.8).ToCurrent(Volts(48), 2)), 1e-9)

	assert.Panics(t, func() { Kwh(1).ToCurrent(Volts(0), 1) })
	assert.Panics(t, func() { Kwh(1).ToCurrent(Volts(48), 0) })
}

func TestSocBounds(t *testing.T) {
	assert.Panics(t, func() { Soc(-1) })
	assert.Panics(t, func() { Soc(101) })

	assert.EqualValues(t, 0, ClampSoc(-10))
	assert.EqualValues(t, 100, ClampSoc(140))

	assert.EqualValues(t, 100, Soc(80).AddSat(Soc(30)))
	assert.EqualValues(t, 0, Soc(20).SubSat(Soc(30)))
}

func TestSocEnergyRoundTrip(t *testing.T) {
	capacity := Kwh(10)
	soc := Soc(35)
	assert.InDelta(t, 3.5, float64(soc.ToEnergy(capacity)), 1e-9)
	assert.InDelta(t, 35, float64(SocFromEnergy(soc.ToEnergy(capacity), capacity)), 1e-9)

	// more energy than the battery holds clamps to 100%
	assert.EqualValues(t, 100, SocFromEnergy(Kwh(25), capacity))
}

func TestPriceComparisons(t *testing.T) {
	low := PlnPerMwhFloat(300)
	high := PlnPerMwhFloat(750)

	assert.True(t, low.LessThan(high))
	assert.True(t, high.GreaterThan(low))
	assert.False(t, low.GreaterThan(low))
	assert.Equal(t, 0, low.Cmp(PlnPerMwhFloat(300)))

	sum := low.Add(high)
	assert.Equal(t, 0, sum.Cmp(PlnPerMwhFloat(1050)))
}

func TestPriceUnitMismatchPanics(t *testing.T) {
	pln := PlnPerMwhFloat(100)
	other := EnergyPrice{Amount: pln.Amount, Currency: "EUR", Unit: UnitMWh}

	assert.Panics(t, func() { pln.Add(other) })
	assert.Panics(t, func() { pln.Cmp(other) })
}

func TestPriceNonNegative(t *testing.T) {
	negative := PlnPerMwhFloat(-120)
	floored := negative.NonNegative()
	assert.True(t, floored.Amount.IsZero())
	assert.Equal(t, CurrencyPLN, floored.Currency)

	positive := PlnPerMwhFloat(120)
	assert.Equal(t, 0, positive.NonNegative().Cmp(positive))
}
