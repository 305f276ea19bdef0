package service

import (
	"testing"

	"tariffpilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func coolingEstimator(t *testing.T) *DefaultCoolingEstimator {
	ecoOn, err := domain.ParseDailyWindow("13:00", "16:00")
	require.NoError(t, err)
	ecoOff, err := domain.ParseDailyWindow("11:00", "14:00")
	require.NoError(t, err)

	return &DefaultCoolingEstimator{
		TargetEcoOn:       domain.Celsius(25),
		TargetEcoOff:      domain.Celsius(24),
		BoostWindowEcoOn:  ecoOn,
		BoostWindowEcoOff: ecoOff,
		BoostDelta:        domain.Celsius(2),
		Logger:            zap.NewNop(),
	}
}

func coolingState() domain.HvacState {
	return domain.HvacState{
		EcoMode:       true,
		HeatingMode:   domain.HvacModeCool,
		CoolingTarget: domain.Celsius(25),
	}
}

func TestCoolingTargetLoweredInsideBoostWindow(t *testing.T) {
	e := coolingEstimator(t)
	state := coolingState()

	target := e.EstimateTargetTemperature(state, hourAt(14))
	require.NotNil(t, target)
	assert.EqualValues(t, 23, *target, "pre-cool on cheap energy")
}

func TestCoolingTargetUnchangedOutsideBoostWindow(t *testing.T) {
	e := coolingEstimator(t)
	state := coolingState()

	assert.Nil(t, e.EstimateTargetTemperature(state, hourAt(9)))
}

func TestCoolingInactiveOutsideCoolMode(t *testing.T) {
	e := coolingEstimator(t)
	state := coolingState()
	state.HeatingMode = domain.HvacModeHeat

	assert.Nil(t, e.EstimateTargetTemperature(state, hourAt(14)))
}

func TestCoolingUsesEcoOffWindowAndAdjustment(t *testing.T) {
	e := coolingEstimator(t)
	state := coolingState()
	state.EcoMode = false
	state.TemperatureAdjustment = domain.Celsius(-1)

	// eco-off base 24, window 11:00-14:00, minus the adjustment
	target := e.EstimateTargetTemperature(state, hourAt(12))
	require.NotNil(t, target)
	assert.EqualValues(t, 21, *target)
}
