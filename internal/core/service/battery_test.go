package service

import (
	"testing"
	"time"

	"tariffpilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func hourAt(hour int) time.Time {
	return time.Date(2026, 1, 15, hour, 0, 0, 0, time.UTC)
}

func consHour(start time.Time, energy float64) domain.HourlyConsumptionEnergy {
	return domain.HourlyConsumptionEnergy{Period: domain.HourlyPeriodOf(start), Energy: domain.Kwh(energy)}
}

func prodHour(start time.Time, energy float64) domain.HourlyProductionEnergy {
	return domain.HourlyProductionEnergy{Period: domain.HourlyPeriodOf(start), Energy: domain.Kwh(energy)}
}

func TestEstimateBatteryReserveSoc(t *testing.T) {
	// 3.5 kWh of a 10 kWh battery is 35%, stacked on min+margin
	target := EstimateBatteryReserveSoc(domain.Kwh(3.5), domain.Kwh(10),
		domain.Soc(20), domain.Soc(5), domain.Soc(80))
	assert.InDelta(t, 60, float64(target), 1e-9)

	// capped at the configured maximum
	capped := EstimateBatteryReserveSoc(domain.Kwh(9), domain.Kwh(10),
		domain.Soc(20), domain.Soc(5), domain.Soc(80))
	assert.EqualValues(t, 80, capped)
}

func TestEstimateBatterySurplusEnergy(t *testing.T) {
	// 90% minus 18% reserve minus 20+5 floor leaves 47% of 10 kWh
	surplus := EstimateBatterySurplusEnergy(domain.Kwh(1.8), domain.Soc(90),
		domain.Kwh(10), domain.Soc(20), domain.Soc(5))
	assert.InDelta(t, 4.7, float64(surplus), 1e-9)

	// an over-committed battery yields nothing, never a negative value
	none := EstimateBatterySurplusEnergy(domain.Kwh(9), domain.Soc(30),
		domain.Kwh(10), domain.Soc(20), domain.Soc(5))
	assert.EqualValues(t, 0, none)
}

func TestEstimateBatteryMaxSoc(t *testing.T) {
	assert.InDelta(t, 90, float64(EstimateBatteryMaxSoc(domain.Kwh(3), domain.Soc(60), domain.Kwh(10))), 1e-9)
	assert.EqualValues(t, 100, EstimateBatteryMaxSoc(domain.Kwh(9), domain.Soc(60), domain.Kwh(10)))
}

func TestTotalSurplusFloorsAtZero(t *testing.T) {
	cons := []domain.HourlyConsumptionEnergy{consHour(hourAt(10), 2), consHour(hourAt(11), 2)}
	prod := []domain.HourlyProductionEnergy{prodHour(hourAt(10), 5)}

	assert.InDelta(t, 1, float64(TotalSurplus(cons, prod)), 1e-9)
	assert.EqualValues(t, 0, TotalSurplus(cons, nil))
}

func TestMaximumCumulativeDeficitTracksDeepestShortfall(t *testing.T) {
	// balance walks -2, +1, -1: the deepest shortfall is 2, not the net 1
	cons := []domain.HourlyConsumptionEnergy{
		consHour(hourAt(10), 2),
		consHour(hourAt(12), 2),
	}
	prod := []domain.HourlyProductionEnergy{
		prodHour(hourAt(11), 3),
	}
	assert.InDelta(t, 2, float64(MaximumCumulativeDeficit(cons, prod)), 1e-9)
}

func TestMaximumCumulativeDeficitSurplusWindow(t *testing.T) {
	cons := []domain.HourlyConsumptionEnergy{consHour(hourAt(10), 1)}
	prod := []domain.HourlyProductionEnergy{prodHour(hourAt(10), 4)}
	assert.EqualValues(t, 0, MaximumCumulativeDeficit(cons, prod))

	assert.EqualValues(t, 0, MaximumCumulativeDeficit(nil, nil))
}
