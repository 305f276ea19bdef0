package domain

import (
	"time"

	"github.com/asynkron/protoactor-go/actor"
)

const (
	ACTOR_ID_MASTER        = "master"
	ACTOR_ID_MQTT          = "mqtt"
	ACTOR_ID_SOLAR_CONTROL = "solar_control"
	ACTOR_ID_HVAC_CONTROL  = "hvac_control"
)

type ActorRef actor.PID

type ActorRequest interface {
	ReplyTo() *ActorRef
}

type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

// Health check

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}

// Control ticks. Sent by the quartz scheduler and by entity-change triggers.

type SolarControlTick struct{}

type HvacControlTick struct{}

// EntityStateChanged is published on the actor event stream whenever a
// statestream topic of a tracked entity changes value.
type EntityStateChanged struct {
	EntityId string
	Value    string
}

// AppliedDecision records one set-point write forwarded to the host.
type AppliedDecision struct {
	Actor    string    `json:"actor"`
	Setpoint string    `json:"setpoint"`
	Entity   string    `json:"entity"`
	Value    string    `json:"value"`
	At       time.Time `json:"at"`
}

// Control status, served by the HTTP status route.

type ControlStatusRequest struct {
	ActorRequestMixIn
}

type ControlStatusResponse struct {
	ActorResponseMixIn
	Decisions []AppliedDecision
}

// ensure interface compliance
var _ ActorRequest = (*ActorHealthRequest)(nil)
var _ ActorResponse = (*ControlStatusResponse)(nil)
