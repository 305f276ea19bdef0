package actor

import (
	"errors"
	"fmt"
	"log"
	"time"

	adactor "tariffpilot/internal/adapter/actor"
	"tariffpilot/internal/config"
	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"
	. "tariffpilot/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

// MasterOfPuppetsActor supervises the MQTT adapter and the two control
// loops. It answers healthcheck requests by fanning out to the children and
// aggregates their recorded decisions for the status route.
type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck healthCheckResult
	currentStatus      statusResult
	eventStream        *eventstream.EventStream
	mqttActor          *actor.PID
	solarControlActor  *actor.PID
	hvacControlActor   *actor.PID
	mqttActorProvider  MQTTActorProvider
	stateFactory       port.StateFactory
	serviceCaller      port.ServiceCaller
	clock              port.Clock
	logger             *zap.Logger
}

type healthCheckResult struct {
	mqttActorHealthy  bool
	solarActorHealthy bool
	hvacActorHealthy  bool
	checksReceived    int
	respondTo         *actor.PID
}

type statusResult struct {
	decisions         []domain.AppliedDecision
	responsesReceived int
	respondTo         *actor.PID
}

func NewMasterOfPuppetsActor(config config.Config, mqttActorProvider MQTTActorProvider,
	stateFactory port.StateFactory, serviceCaller port.ServiceCaller, clock port.Clock,
	logger *zap.Logger) *MasterOfPuppetsActor {

	act := &MasterOfPuppetsActor{
		config:            config,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		logger:            ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:       &eventstream.EventStream{},
		mqttActorProvider: mqttActorProvider,
		stateFactory:      stateFactory,
		serviceCaller:     serviceCaller,
		clock:             clock,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

// EventStream exposes the master's private event stream for tests.
func (state *MasterOfPuppetsActor) EventStream() *eventstream.EventStream {
	return state.eventStream
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		solarControlPID, err := state.startSolarControlActor(ctx)
		if err != nil {
			panic(err)
		}
		state.solarControlActor = solarControlPID

		hvacControlPID, err := state.startHvacControlActor(ctx)
		if err != nil {
			panic(err)
		}
		state.hvacControlActor = hvacControlPID

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		for _, child := range []*actor.PID{state.mqttActor, state.solarControlActor, state.hvacControlActor} {
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(child, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
				return domain.ActorHealthResponse{
					Id:      child.GetId(),
					Healthy: false,
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.ControlStatusRequest:
		state.logger.Debug("master@default ControlStatusRequest")
		state.currentStatus = statusResult{respondTo: ctx.Sender()}
		for _, child := range []*actor.PID{state.solarControlActor, state.hvacControlActor} {
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(child, domain.ControlStatusRequest{}, 500*time.Millisecond), func(err error) any {
				return domain.ControlStatusResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.StatusReceive)
	case domain.SolarControlTick:
		ctx.Send(state.solarControlActor, msg)
	case domain.HvacControlTick:
		ctx.Send(state.hvacControlActor, msg)
	case *actor.Terminated:
		// if the mqtt adapter dies for good, there is nothing left to control
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_MQTT) {
			state.logger.Error("master@default mqtt terminated")
			panic(errors.New("mqtt terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_MQTT:
				state.currentHealthCheck.mqttActorHealthy = true
			case domain.ACTOR_ID_SOLAR_CONTROL:
				state.currentHealthCheck.solarActorHealthy = true
			case domain.ACTOR_ID_HVAC_CONTROL:
				state.currentHealthCheck.hvacActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {
			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) StatusReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		state.currentStatus.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ControlStatusResponse:
		state.logger.Debug("master@status ControlStatusResponse", zap.Int("decisions", len(msg.Decisions)))
		state.currentStatus.responsesReceived++
		if !msg.HasResponseError() {
			state.currentStatus.decisions = append(state.currentStatus.decisions, msg.Decisions...)
		}
		if state.currentStatus.responsesReceived == 2 {
			state.currentStatus.respond(ctx)
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@status stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {
	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
}

func (state *MasterOfPuppetsActor) startSolarControlActor(ctx actor.Context) (*actor.PID, error) {
	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	solarProps := actor.PropsFromProducer(func() actor.Actor {
		return NewSolarControlActor(&state.config, state.stateFactory, state.serviceCaller,
			state.clock, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(solarProps, domain.ACTOR_ID_SOLAR_CONTROL)
}

func (state *MasterOfPuppetsActor) startHvacControlActor(ctx actor.Context) (*actor.PID, error) {
	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	hvacProps := actor.PropsFromProducer(func() actor.Actor {
		return NewHvacControlActor(&state.config, state.stateFactory, state.serviceCaller,
			state.clock, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(hvacProps, domain.ACTOR_ID_HVAC_CONTROL)
}

func (state *healthCheckResult) reset() {
	state.mqttActorHealthy = false
	state.solarActorHealthy = false
	state.hvacActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.mqttActorHealthy && state.solarActorHealthy && state.hvacActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}

func (state *statusResult) respond(ctx actor.Context) {
	resp := domain.ControlStatusResponse{
		Decisions: state.decisions,
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
