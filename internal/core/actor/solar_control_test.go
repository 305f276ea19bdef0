package actor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"
	"tariffpilot/internal/util"
	"tariffpilot/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type fakeStateFactory struct {
	solar domain.State
	hvac  domain.HvacState
	err   error
}

func (f *fakeStateFactory) BuildSolar(now time.Time) (*domain.State, error) {
	if f.err != nil {
		return nil, f.err
	}
	solar := f.solar
	return &solar, nil
}

func (f *fakeStateFactory) BuildHvac(now time.Time) (*domain.HvacState, error) {
	if f.err != nil {
		return nil, f.err
	}
	hvac := f.hvac
	return &hvac, nil
}

type recordedCall struct {
	service string
	data    map[string]any
}

type recordingServiceCaller struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (c *recordingServiceCaller) Call(service string, data map[string]any) (*port.ServiceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, recordedCall{service: service, data: data})
	return &port.ServiceResult{Success: true}, nil
}

func (c *recordingServiceCaller) CallAsync(service string, data map[string]any, callback func(*port.ServiceResult, error)) {
	result, err := c.Call(service, data)
	if callback != nil {
		callback(result, err)
	}
}

func (c *recordingServiceCaller) recorded() []recordedCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recordedCall(nil), c.calls...)
}

func TestSolarControlNightTick(t *testing.T) {

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	cfg := util.LoadTestConfig()
	clock := fixedClock{now: time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)}
	factory := &fakeStateFactory{solar: domain.State{
		BatterySoc:          domain.Soc(60),
		BatteryReserveSoc:   domain.Soc(20),
		StorageMode:         domain.StorageModeSelfUse,
		MaxChargeCurrent:    domain.Amps(25),
		MaxDischargeCurrent: domain.Amps(25),
		HeatingMode:         domain.HvacModeOff,
	}}
	caller := &recordingServiceCaller{}
	stream := &eventstream.EventStream{}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSolarControlActor(&cfg, factory, caller, clock, stream, logger)
	})
	pid := context.Spawn(props)

	context.Send(pid, domain.SolarControlTick{})
	time.Sleep(200 * time.Millisecond)

	// at 23:00: reserve soc raised to cover the 07:00-13:00 morning block
	// and the night charge current applied; no prices, so no storage mode
	// or slot writes
	calls := caller.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "number/set_value", calls[0].service)
	assert.Equal(t, "number.battery_reserve_soc", calls[0].data["entity_id"])
	assert.EqualValues(t, 55, calls[0].data["value"])
	assert.Equal(t, "number/set_value", calls[1].service)
	assert.Equal(t, "number.max_charge_current", calls[1].data["entity_id"])
	assert.EqualValues(t, 50, calls[1].data["value"])

	hcr, err := healthCheck(context, pid)
	require.NoError(t, err)
	assert.True(t, hcr.Healthy, "actor should be healthy")

	status, err := controlStatus(context, pid)
	require.NoError(t, err)
	require.Len(t, status.Decisions, 2)
	assert.Equal(t, "reserve_soc", status.Decisions[0].Setpoint)
	assert.Equal(t, "55", status.Decisions[0].Value)
	assert.Equal(t, "max_charge_current", status.Decisions[1].Setpoint)
	assert.Equal(t, "50", status.Decisions[1].Value)

	context.Stop(pid)
}

func TestSolarControlTriggeredByEntityChange(t *testing.T) {

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	cfg := util.LoadTestConfig()
	clock := fixedClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	factory := &fakeStateFactory{err: errors.New("host not ready")}
	caller := &recordingServiceCaller{}
	stream := &eventstream.EventStream{}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSolarControlActor(&cfg, factory, caller, clock, stream, logger)
	})
	pid := context.Spawn(props)
	time.Sleep(100 * time.Millisecond)

	// a change on a trigger entity schedules a tick; the incomplete
	// snapshot makes it a no-op
	stream.Publish(domain.EntityStateChanged{EntityId: "sensor.hourly_price", Value: "600"})
	stream.Publish(domain.EntityStateChanged{EntityId: "sensor.unrelated", Value: "1"})
	time.Sleep(200 * time.Millisecond)

	assert.Empty(t, caller.recorded())

	status, err := controlStatus(context, pid)
	require.NoError(t, err)
	assert.Empty(t, status.Decisions)

	context.Stop(pid)
}

func healthCheck(ctx *actor.RootContext, pid *actor.PID) (*domain.ActorHealthResponse, error) {
	resp, err := ctx.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	if err != nil {
		return nil, err
	}
	hcr, ok := resp.(domain.ActorHealthResponse)
	if !ok {
		return nil, errors.New("unexpected response type")
	}
	return &hcr, nil
}

func controlStatus(ctx *actor.RootContext, pid *actor.PID) (*domain.ControlStatusResponse, error) {
	resp, err := ctx.RequestFuture(pid, domain.ControlStatusRequest{}, 2*time.Second).Result()
	if err != nil {
		return nil, err
	}
	csr, ok := resp.(domain.ControlStatusResponse)
	if !ok {
		return nil, errors.New("unexpected response type")
	}
	return &csr, nil
}
