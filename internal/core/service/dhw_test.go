package service

import (
	"testing"
	"time"

	"tariffpilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dhwEstimator(t *testing.T) *DefaultDhwEstimator {
	boost, err := domain.ParseDailyWindow("13:00", "16:00")
	require.NoError(t, err)

	return &DefaultDhwEstimator{
		TargetEcoOn:  domain.Celsius(48),
		TargetEcoOff: domain.Celsius(50),
		DeltaEcoOn:   domain.Celsius(8),
		DeltaEcoOff:  domain.Celsius(8),
		BoostWindow:  boost,
		Logger:       zap.NewNop(),
	}
}

func hvacState() domain.HvacState {
	return domain.HvacState{
		EcoMode:     true,
		DhwActual:   domain.Celsius(42),
		DhwTarget:   domain.Celsius(48),
		HeatingMode: domain.HvacModeOff,
	}
}

func TestDhwTargetLoweredInsideBoostWindow(t *testing.T) {
	e := dhwEstimator(t)
	state := hvacState()

	// under temperature, inside the window with at least an hour left
	target := e.EstimateTargetTemperature(state, hourAt(14))
	require.NotNil(t, target)
	assert.EqualValues(t, 40, *target)
}

func TestDhwTargetUnchangedOutsideBoostWindow(t *testing.T) {
	e := dhwEstimator(t)
	state := hvacState()

	// no change at 08:00: base target 48 equals the configured target
	assert.Nil(t, e.EstimateTargetTemperature(state, hourAt(8)))
}

func TestDhwBoostNotStartedNearWindowEnd(t *testing.T) {
	e := dhwEstimator(t)
	state := hvacState()

	// 15:30 + 1h falls outside the window, the cycle would not finish
	assert.Nil(t, e.EstimateTargetTemperature(state, hourAt(15).Add(30*time.Minute)))
}

func TestDhwBoostKeptOnceActive(t *testing.T) {
	e := dhwEstimator(t)
	state := hvacState()
	state.DhwActual = domain.Celsius(49)
	state.DhwTarget = domain.Celsius(55)

	// the vendor boost raised the target above base: keep the lowered
	// standby target for the rest of the window even without lead time
	target := e.EstimateTargetTemperature(state, hourAt(15).Add(30*time.Minute))
	require.NotNil(t, target)
	assert.EqualValues(t, 40, *target)
}

func TestDhwTargetEcoOff(t *testing.T) {
	e := dhwEstimator(t)
	state := hvacState()
	state.EcoMode = false

	target := e.EstimateTargetTemperature(state, hourAt(8))
	require.NotNil(t, target)
	assert.EqualValues(t, 50, *target)
}

func TestDhwDeltaTracksEcoMode(t *testing.T) {
	e := dhwEstimator(t)
	e.DeltaEcoOff = domain.Celsius(10)
	state := hvacState()

	assert.EqualValues(t, 8, e.EstimateDeltaTemperature(state))

	state.EcoMode = false
	assert.EqualValues(t, 10, e.EstimateDeltaTemperature(state))
}
