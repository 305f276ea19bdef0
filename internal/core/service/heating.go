package service

import (
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

const (
	heatingBoostOffset = domain.Celsius(1)
	curveHighOffset    = domain.Celsius(10)
	curveLowOffset     = domain.Celsius(5)
)

// DefaultHeatingEstimator plans the space heating target temperature and
// the weather-compensation curve bounds. Active only while the heat pump is
// in heating mode.
type DefaultHeatingEstimator struct {
	TempEcoOn         domain.Celsius
	TempEcoOff        domain.Celsius
	BoostWindowEcoOn  domain.DailyWindow
	BoostWindowEcoOff domain.DailyWindow
	Logger            *zap.Logger
}

func (e *DefaultHeatingEstimator) base(state domain.HvacState) domain.Celsius {
	if state.EcoMode {
		return e.TempEcoOn
	}
	return e.TempEcoOff
}

func (e *DefaultHeatingEstimator) boostWindow(state domain.HvacState) domain.DailyWindow {
	if state.EcoMode {
		return e.BoostWindowEcoOn
	}
	return e.BoostWindowEcoOff
}

func (e *DefaultHeatingEstimator) EstimateTargetTemperature(state domain.HvacState, now time.Time) *domain.Celsius {
	if state.HeatingMode != domain.HvacModeHeat {
		return nil
	}
	target := e.base(state)
	if e.boostWindow(state).Contains(now) {
		target = target.Add(heatingBoostOffset)
	}
	target = target.Add(state.TemperatureAdjustment).Round()
	if target == state.HeatingTarget {
		return nil
	}
	e.Logger.Debug("heating: target change", zap.Float64("target", float64(target)))
	return &target
}

func (e *DefaultHeatingEstimator) EstimateCurveHigh(state domain.HvacState) *domain.Celsius {
	if state.HeatingMode != domain.HvacModeHeat {
		return nil
	}
	high := e.base(state).Add(curveHighOffset).Round()
	if high == state.CurveHigh {
		return nil
	}
	return &high
}

func (e *DefaultHeatingEstimator) EstimateCurveLow(state domain.HvacState) *domain.Celsius {
	if state.HeatingMode != domain.HvacModeHeat {
		return nil
	}
	low := e.base(state).Add(curveLowOffset).Round()
	if low == state.CurveLow {
		return nil
	}
	return &low
}

// ensure interface compliance
var _ port.HeatingEstimator = (*DefaultHeatingEstimator)(nil)
