package service

import (
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

// DefaultDhwEstimator plans the domestic hot water target temperature. The
// boost window lowers the target by the configured delta: the vendor's
// separate boost mechanism performs the actual high-temperature cycle, and
// an under-temperature target keeps standby reheat idle until it kicks in.
type DefaultDhwEstimator struct {
	TargetEcoOn  domain.Celsius
	TargetEcoOff domain.Celsius
	DeltaEcoOn   domain.Celsius
	DeltaEcoOff  domain.Celsius
	BoostWindow  domain.DailyWindow
	Logger       *zap.Logger
}

func (e *DefaultDhwEstimator) EstimateTargetTemperature(state domain.HvacState, now time.Time) *domain.Celsius {
	target, delta := e.TargetEcoOff, e.DeltaEcoOff
	if state.EcoMode {
		target, delta = e.TargetEcoOn, e.DeltaEcoOn
	}

	inBoost := e.BoostWindow.Contains(now)
	inLead := e.BoostWindow.Contains(now.Add(time.Hour))
	needsBoost := state.DhwActual < target
	boostAlreadyActive := state.DhwTarget > target

	if inBoost && (boostAlreadyActive || (needsBoost && inLead)) {
		e.Logger.Debug("dhw: boost window active",
			zap.Float64("base_target", float64(target)),
			zap.Float64("delta", float64(delta)))
		target = target.Sub(delta)
	}

	target = target.Round()
	if target == state.DhwTarget {
		return nil
	}
	return &target
}

// EstimateDeltaTemperature surfaces the configured boost depth for the
// active mode so the controller can mirror it to the vendor's delta entity.
func (e *DefaultDhwEstimator) EstimateDeltaTemperature(state domain.HvacState) domain.Celsius {
	if state.EcoMode {
		return e.DeltaEcoOn
	}
	return e.DeltaEcoOff
}

// ensure interface compliance
var _ port.DhwEstimator = (*DefaultDhwEstimator)(nil)
