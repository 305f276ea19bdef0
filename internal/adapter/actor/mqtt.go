package actor

import (
	"fmt"

	"tariffpilot/internal/adapter/hass"
	"tariffpilot/internal/core/domain"
	. "tariffpilot/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// MQTTActor owns the statestream client lifecycle. It connects on start
// (panicking on failure so the supervisor's backoff drives reconnection) and
// republishes every tracked entity change on the actor event stream.
type MQTTActor struct {
	behavior    actor.Behavior
	stash       *Stash
	client      *hass.StatestreamClient
	eventStream *eventstream.EventStream
	logger      *zap.Logger
}

type mqttConnectionLost struct {
	err error
}

func NewMQTTActor(client *hass.StatestreamClient, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		client:      client,
		eventStream: eventStream,
		logger:      ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")

		root := ctx.ActorSystem().Root
		self := ctx.Self()

		state.client.OnConnectionLost = func(err error) {
			root.Send(self, mqttConnectionLost{err: err})
		}
		state.client.OnEntityChange = func(entityId, value string) {
			state.eventStream.Publish(domain.EntityStateChanged{
				EntityId: entityId,
				Value:    value,
			})
		}
		if err := state.client.Connect(); err != nil {
			state.logger.Error("mqtt@starting connect error", zap.Error(err))
			panic(err)
		}
		state.logger.Info("mqtt@starting connected")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: state.client.IsConnected(),
			State:   "connected",
		})
	case mqttConnectionLost:
		// paho auto-reconnects; keep serving the cache meanwhile
		state.logger.Warn("mqtt@default connection lost", zap.Error(msg.err))
	case *actor.Stopping:
		state.client.Disconnect()
	}
}
