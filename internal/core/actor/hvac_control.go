package actor

import (
	"fmt"
	"time"

	"tariffpilot/internal/adapter/hass"
	"tariffpilot/internal/config"
	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"
	"tariffpilot/internal/core/service"
	. "tariffpilot/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// HvacControlActor runs the heat-pump-side control loop: domestic hot water
// target and boost delta, space heating target with curve bounds, and the
// cooling target. All writes are fire-and-forget number set-points.
type HvacControlActor struct {
	behavior actor.Behavior
	stash    *Stash

	config      *config.Config
	factory     port.StateFactory
	caller      port.ServiceCaller
	clock       port.Clock
	eventStream *eventstream.EventStream

	dhw     port.DhwEstimator
	heating port.HeatingEstimator
	cooling port.CoolingEstimator

	triggers     map[string]bool
	subscription *eventstream.Subscription
	decisions    []domain.AppliedDecision
	totalApplied int
	logger       *zap.Logger
}

func NewHvacControlActor(cfg *config.Config, factory port.StateFactory, caller port.ServiceCaller,
	clock port.Clock, eventStream *eventstream.EventStream, logger *zap.Logger) *HvacControlActor {

	triggers := make(map[string]bool, len(cfg.Entities.HvacTriggers))
	for _, entityId := range cfg.Entities.HvacTriggers {
		triggers[entityId] = true
	}

	act := &HvacControlActor{
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		config:      cfg,
		factory:     factory,
		caller:      caller,
		clock:       clock,
		eventStream: eventStream,
		dhw: &service.DefaultDhwEstimator{
			TargetEcoOn:  domain.Celsius(cfg.Dhw.TargetEcoOn),
			TargetEcoOff: domain.Celsius(cfg.Dhw.TargetEcoOff),
			DeltaEcoOn:   domain.Celsius(cfg.Dhw.DeltaEcoOn),
			DeltaEcoOff:  domain.Celsius(cfg.Dhw.DeltaEcoOff),
			BoostWindow:  config.MustWindow(cfg.Dhw.BoostStart, cfg.Dhw.BoostEnd),
			Logger:       logger,
		},
		heating: &service.DefaultHeatingEstimator{
			TempEcoOn:         domain.Celsius(cfg.Heating.TempEcoOn),
			TempEcoOff:        domain.Celsius(cfg.Heating.TempEcoOff),
			BoostWindowEcoOn:  config.MustWindow(cfg.Heating.BoostEcoOnStart, cfg.Heating.BoostEcoOnEnd),
			BoostWindowEcoOff: config.MustWindow(cfg.Heating.BoostEcoOffStart, cfg.Heating.BoostEcoOffEnd),
			Logger:            logger,
		},
		cooling: &service.DefaultCoolingEstimator{
			TargetEcoOn:       domain.Celsius(cfg.Cooling.TargetEcoOn),
			TargetEcoOff:      domain.Celsius(cfg.Cooling.TargetEcoOff),
			BoostWindowEcoOn:  config.MustWindow(cfg.Cooling.BoostEcoOnStart, cfg.Cooling.BoostEcoOnEnd),
			BoostWindowEcoOff: config.MustWindow(cfg.Cooling.BoostEcoOffStart, cfg.Cooling.BoostEcoOffEnd),
			BoostDelta:        domain.Celsius(cfg.Cooling.BoostDelta),
			Logger:            logger,
		},
		triggers: triggers,
		logger:   ActorLogger(domain.ACTOR_ID_HVAC_CONTROL, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HvacControlActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HvacControlActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hvac_control@starting started")

		root := ctx.ActorSystem().Root
		self := ctx.Self()
		state.subscription = state.eventStream.Subscribe(func(evt interface{}) {
			if changed, ok := evt.(domain.EntityStateChanged); ok && state.triggers[changed.EntityId] {
				root.Send(self, domain.HvacControlTick{})
			}
		})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("hvac_control@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HvacControlActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("hvac_control@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HVAC_CONTROL,
			Healthy: true,
			State:   "idle",
		})
	case domain.ControlStatusRequest:
		ctx.Respond(domain.ControlStatusResponse{
			Decisions: append([]domain.AppliedDecision(nil), state.decisions...),
		})
	case domain.HvacControlTick:
		state.logger.Debug("hvac_control@default tick")
		NewBackgroundTask(ctx, state.controlTick).
			WithTimeout(tickTimeout).
			OnError(func(err error) {
				state.logger.Warn("hvac_control: tick skipped", zap.Error(err))
			}).
			OnSuccess(func(report tickReport) {
				if report.applied > 0 {
					state.logger.Info("hvac_control: set-points applied", zap.Int("count", report.applied))
				}
			}).Run()
	case *actor.Stopping:
		if state.subscription != nil {
			state.eventStream.Unsubscribe(state.subscription)
		}
	default:
		state.logger.Debug("hvac_control@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HvacControlActor) controlTick() (*tickReport, error) {
	now := state.clock.Now()
	snapshot, err := state.factory.BuildHvac(now)
	if err != nil {
		return nil, fmt.Errorf("snapshot incomplete: %w", err)
	}

	before := state.totalApplied
	entities := state.config.Entities

	if target := state.dhw.EstimateTargetTemperature(*snapshot, now); target != nil {
		state.setNumber("dhw_target", entities.DhwTarget, float64(*target), now)
		// the delta entity backs the vendor boost cycle; keep it in step
		// with the mode the target was planned for
		delta := state.dhw.EstimateDeltaTemperature(*snapshot)
		state.setNumber("dhw_delta", entities.DhwDelta, float64(delta), now)
	}
	if target := state.heating.EstimateTargetTemperature(*snapshot, now); target != nil {
		state.setNumber("heating_target", entities.HeatingTarget, float64(*target), now)
	}
	if target := state.heating.EstimateCurveHigh(*snapshot); target != nil {
		state.setNumber("curve_high", entities.CurveHigh, float64(*target), now)
	}
	if target := state.heating.EstimateCurveLow(*snapshot); target != nil {
		state.setNumber("curve_low", entities.CurveLow, float64(*target), now)
	}
	if target := state.cooling.EstimateTargetTemperature(*snapshot, now); target != nil {
		state.setNumber("cooling_target", entities.CoolingTarget, float64(*target), now)
	}
	return &tickReport{applied: state.totalApplied - before}, nil
}

func (state *HvacControlActor) setNumber(setpoint, entityId string, value float64, now time.Time) {
	state.logger.Info("hvac_control: set number",
		zap.String("setpoint", setpoint), zap.String("entity", entityId), zap.Float64("value", value))
	state.caller.CallAsync(hass.ServiceSetNumber, map[string]any{
		"entity_id": entityId,
		"value":     value,
	}, func(_ *port.ServiceResult, err error) {
		if err != nil {
			state.logger.Error("hvac_control: service call failed",
				zap.String("service", hass.ServiceSetNumber), zap.String("entity", entityId), zap.Error(err))
		}
	})
	state.totalApplied++
	state.decisions = append(state.decisions, domain.AppliedDecision{
		Actor:    domain.ACTOR_ID_HVAC_CONTROL,
		Setpoint: setpoint,
		Entity:   entityId,
		Value:    formatFloat(value),
		At:       now,
	})
	if len(state.decisions) > maxRecordedDecisions {
		state.decisions = state.decisions[len(state.decisions)-maxRecordedDecisions:]
	}
}
