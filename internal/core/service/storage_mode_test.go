package service

import (
	"testing"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testForecasts() forecast.Factory {
	return forecast.Factory{
		EveningStartHour:    17,
		ConsumptionAway:     domain.Kwh(0.3),
		ConsumptionDay:      domain.Kwh(0.5),
		ConsumptionEvening:  domain.Kwh(1.2),
		HeatingCopAt7C:      3.5,
		HeatingLossKwPerC:   0.15,
		TempOutFallback:     domain.Celsius(7),
		HumidityOutFallback: 60,
	}
}

func solarState() domain.State {
	return domain.State{
		BatterySoc:        domain.Soc(60),
		BatteryReserveSoc: domain.Soc(20),
		TempIndoor:        domain.Celsius(21),
		HeatingMode:       domain.HvacModeOff,
		StorageMode:       domain.StorageModeSelfUse,
	}
}

// hourlyPrices builds consecutive hourly prices starting at startHour.
func hourlyPrices(startHour int, prices ...float64) []domain.HourlyPrice {
	out := make([]domain.HourlyPrice, 0, len(prices))
	for i, p := range prices {
		out = append(out, domain.HourlyPrice{
			Period: domain.HourlyPeriodOf(hourAt(startHour + i)),
			Price:  domain.PlnPerMwhFloat(p),
		})
	}
	return out
}

// pvSeries builds consecutive hourly production energies starting at startHour.
func pvSeries(startHour int, energies ...float64) []domain.HourlyProductionEnergy {
	out := make([]domain.HourlyProductionEnergy, 0, len(energies))
	for i, e := range energies {
		out = append(out, prodHour(hourAt(startHour+i), e))
	}
	return out
}

func storageModeEstimator() *DefaultStorageModeEstimator {
	return &DefaultStorageModeEstimator{
		BatteryCapacity:        domain.Kwh(10),
		ReserveSocMin:          domain.Soc(20),
		ReserveSocMargin:       domain.Soc(5),
		PvExportMinPriceMargin: domain.PlnPerMwhFloat(150),
		Forecasts:              testForecasts(),
		Logger:                 zap.NewNop(),
	}
}

func exportableState() domain.State {
	state := solarState()
	state.CurrentPrice = domain.PlnPerMwhFloat(500)
	state.Prices = hourlyPrices(10, 300, 400, 450, 500, 550, 600)
	state.ProductionToday = pvSeries(10, 2, 2, 2, 2, 2, 2)
	return state
}

func TestStorageModeExportsWhenAllConditionsMet(t *testing.T) {
	e := storageModeEstimator()
	state := exportableState()

	mode := e.Estimate(state, hourAt(10))
	require.NotNil(t, mode)
	assert.Equal(t, domain.StorageModeFeedInPriority, *mode)
}

func TestStorageModeNoChangeSuppressed(t *testing.T) {
	e := storageModeEstimator()
	state := exportableState()
	state.StorageMode = domain.StorageModeFeedInPriority

	assert.Nil(t, e.Estimate(state, hourAt(10)), "already exporting, nothing to write")
}

func TestStorageModeRequiresPriceAdvantage(t *testing.T) {
	e := storageModeEstimator()
	state := exportableState()
	// 400 is not above min price 300 plus the 150 margin
	state.CurrentPrice = domain.PlnPerMwhFloat(400)

	assert.Nil(t, e.Estimate(state, hourAt(10)), "self-use equals the observed mode")
}

func TestStorageModeRequiresSocHeadroom(t *testing.T) {
	e := storageModeEstimator()
	state := exportableState()
	state.StorageMode = domain.StorageModeFeedInPriority
	state.BatterySoc = domain.Soc(25) // not above min+margin

	mode := e.Estimate(state, hourAt(10))
	require.NotNil(t, mode)
	assert.Equal(t, domain.StorageModeSelfUse, *mode, "falls back to self-use on low battery")
}

func TestStorageModeRequiresSolarToRefill(t *testing.T) {
	e := storageModeEstimator()
	state := exportableState()
	state.ProductionToday = pvSeries(10, 0.5, 0.5) // solar will not refill the battery

	assert.Nil(t, e.Estimate(state, hourAt(10)))
}

func TestStorageModeSelfUseAfterDaylightHorizon(t *testing.T) {
	e := storageModeEstimator()
	state := exportableState()
	state.StorageMode = domain.StorageModeFeedInPriority

	mode := e.Estimate(state, hourAt(17))
	require.NotNil(t, mode)
	assert.Equal(t, domain.StorageModeSelfUse, *mode)
}

func TestStorageModeNoPriceData(t *testing.T) {
	e := storageModeEstimator()
	state := exportableState()
	state.Prices = nil

	assert.Nil(t, e.Estimate(state, hourAt(10)))
}
