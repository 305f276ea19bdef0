package actor

import (
	"fmt"
	"strconv"
	"time"

	"tariffpilot/internal/adapter/hass"
	"tariffpilot/internal/config"
	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/forecast"
	"tariffpilot/internal/core/port"
	"tariffpilot/internal/core/service"
	. "tariffpilot/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

const (
	maxRecordedDecisions = 32
	tickTimeout          = 30 * time.Second
)

// tickReport summarizes one control tick.
type tickReport struct {
	applied int
}

// SolarControlActor runs the inverter-side control loop. Each tick builds a
// snapshot, runs the battery estimators and forwards changed set-points to
// the host. Slot writes are issued blocking and in order; the rest is
// fire-and-forget.
type SolarControlActor struct {
	behavior actor.Behavior
	stash    *Stash

	config      *config.Config
	factory     port.StateFactory
	caller      port.ServiceCaller
	clock       port.Clock
	eventStream *eventstream.EventStream

	storageMode   port.StorageModeEstimator
	reserveSoc    port.BatteryReserveSocEstimator
	dischargeSlot port.BatteryDischargeSlotEstimator
	maxCurrent    port.BatteryMaxCurrentEstimator

	dayLowEnd     domain.TimeOfDay
	nightLowStart domain.TimeOfDay
	triggers      map[string]bool
	subscription  *eventstream.Subscription
	decisions     []domain.AppliedDecision
	totalApplied  int
	logger        *zap.Logger
}

func NewSolarControlActor(cfg *config.Config, factory port.StateFactory, caller port.ServiceCaller,
	clock port.Clock, eventStream *eventstream.EventStream, logger *zap.Logger) *SolarControlActor {

	forecasts := ForecastFactory(cfg)
	nightLow := config.MustWindow(cfg.Tariff.NightLowStart, cfg.Tariff.NightLowEnd)
	dayLow := config.MustWindow(cfg.Tariff.DayLowStart, cfg.Tariff.DayLowEnd)

	triggers := make(map[string]bool, len(cfg.Entities.SolarTriggers))
	for _, entityId := range cfg.Entities.SolarTriggers {
		triggers[entityId] = true
	}

	act := &SolarControlActor{
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		config:      cfg,
		factory:     factory,
		caller:      caller,
		clock:       clock,
		eventStream: eventStream,
		storageMode: &service.DefaultStorageModeEstimator{
			BatteryCapacity:        domain.Kwh(cfg.Battery.CapacityKwh),
			ReserveSocMin:          domain.Soc(cfg.Battery.ReserveSocMin),
			ReserveSocMargin:       domain.Soc(cfg.Battery.ReserveSocMargin),
			PvExportMinPriceMargin: domain.PlnPerMwhFloat(cfg.Tariff.PvExportMinPriceMargin),
			Forecasts:              forecasts,
			Logger:                 logger,
		},
		reserveSoc: &service.DefaultBatteryReserveSocEstimator{
			BatteryCapacity:  domain.Kwh(cfg.Battery.CapacityKwh),
			ReserveSocMin:    domain.Soc(cfg.Battery.ReserveSocMin),
			ReserveSocMargin: domain.Soc(cfg.Battery.ReserveSocMargin),
			ReserveSocMax:    domain.Soc(cfg.Battery.ReserveSocMax),
			NightLowTariff:   nightLow,
			DayLowTariff:     dayLow,
			Forecasts:        forecasts,
			Logger:           logger,
		},
		dischargeSlot: &service.DefaultBatteryDischargeSlotEstimator{
			BatteryCapacity:       domain.Kwh(cfg.Battery.CapacityKwh),
			BatteryVoltage:        domain.Volts(cfg.Battery.Voltage),
			BatteryMaximumCurrent: domain.Amps(cfg.Battery.MaximumCurrent),
			ReserveSocMin:         domain.Soc(cfg.Battery.ReserveSocMin),
			ReserveSocMargin:      domain.Soc(cfg.Battery.ReserveSocMargin),
			ExportThresholdPrice:  domain.PlnPerMwhFloat(cfg.Tariff.BatteryExportThresholdPrice),
			ExportThresholdEnergy: domain.Kwh(cfg.Tariff.BatteryExportThresholdEnergy),
			Forecasts:             forecasts,
			Logger:                logger,
		},
		maxCurrent: &service.DefaultBatteryMaxCurrentEstimator{
			NightChargeWindow:  nightLow,
			NightChargeCurrent: domain.Amps(cfg.Battery.NightChargeCurrent),
			NominalCurrent:     domain.Amps(cfg.Battery.NominalCurrent),
			MaximumCurrent:     domain.Amps(cfg.Battery.MaximumCurrent),
			Logger:             logger,
		},
		dayLowEnd:     dayLow.End,
		nightLowStart: nightLow.Start,
		triggers:      triggers,
		logger:        ActorLogger(domain.ACTOR_ID_SOLAR_CONTROL, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

// ForecastFactory builds the forecast view factory from configuration.
func ForecastFactory(cfg *config.Config) forecast.Factory {
	return forecast.Factory{
		EveningStartHour:    cfg.Consumption.EveningStartHour,
		ConsumptionAway:     domain.Kwh(cfg.Consumption.AwayKwh),
		ConsumptionDay:      domain.Kwh(cfg.Consumption.DayKwh),
		ConsumptionEvening:  domain.Kwh(cfg.Consumption.EveningKwh),
		HeatingCopAt7C:      cfg.HeatingModel.CopAt7C,
		HeatingLossKwPerC:   cfg.HeatingModel.HeatLossKwPerC,
		TempOutFallback:     domain.Celsius(cfg.HeatingModel.TempOutFallback),
		HumidityOutFallback: cfg.HeatingModel.HumidityOutFallback,
	}
}

func (state *SolarControlActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *SolarControlActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("solar_control@starting started")

		root := ctx.ActorSystem().Root
		self := ctx.Self()
		state.subscription = state.eventStream.Subscribe(func(evt interface{}) {
			if changed, ok := evt.(domain.EntityStateChanged); ok && state.triggers[changed.EntityId] {
				root.Send(self, domain.SolarControlTick{})
			}
		})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("solar_control@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SolarControlActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("solar_control@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SOLAR_CONTROL,
			Healthy: true,
			State:   "idle",
		})
	case domain.ControlStatusRequest:
		ctx.Respond(domain.ControlStatusResponse{
			Decisions: append([]domain.AppliedDecision(nil), state.decisions...),
		})
	case domain.SolarControlTick:
		state.logger.Debug("solar_control@default tick")
		NewBackgroundTask(ctx, state.controlTick).
			WithTimeout(tickTimeout).
			OnError(func(err error) {
				state.logger.Warn("solar_control: tick skipped", zap.Error(err))
			}).
			OnSuccess(func(report tickReport) {
				if report.applied > 0 {
					state.logger.Info("solar_control: set-points applied", zap.Int("count", report.applied))
				}
			}).Run()
	case *actor.Stopping:
		if state.subscription != nil {
			state.eventStream.Unsubscribe(state.subscription)
		}
	default:
		state.logger.Debug("solar_control@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *SolarControlActor) controlTick() (*tickReport, error) {
	now := state.clock.Now()
	snapshot, err := state.factory.BuildSolar(now)
	if err != nil {
		return nil, fmt.Errorf("snapshot incomplete: %w", err)
	}

	before := state.totalApplied
	state.applyReserveSoc(*snapshot, now)
	state.applyStorageMode(*snapshot, now)
	state.applyDischargeSlots(*snapshot, now)
	state.applyMaxCurrents(*snapshot, now)
	return &tickReport{applied: state.totalApplied - before}, nil
}

func (state *SolarControlActor) applyReserveSoc(snapshot domain.State, now time.Time) {
	target := state.reserveSoc.Estimate(snapshot, now)
	if target == nil {
		return
	}
	state.setNumber("reserve_soc", state.config.Entities.BatteryReserveSoc, float64(*target), now)
}

func (state *SolarControlActor) applyStorageMode(snapshot domain.State, now time.Time) {
	target := state.storageMode.Estimate(snapshot, now)
	if target == nil {
		return
	}
	entityId := state.config.Entities.StorageMode
	state.logger.Info("solar_control: set storage mode",
		zap.String("entity", entityId), zap.String("mode", target.String()))
	state.caller.CallAsync(hass.ServiceSelectOption, map[string]any{
		"entity_id": entityId,
		"option":    target.String(),
	}, state.logServiceResult(hass.ServiceSelectOption, entityId))
	state.recordDecision("storage_mode", entityId, target.String(), now)
}

// applyDischargeSlots plans discharge over the evening peak and reconciles
// both inverter slots against the plan. Slot writes go through the blocking
// caller so the inverter never sees a half-written slot.
func (state *SolarControlActor) applyDischargeSlots(snapshot domain.State, now time.Time) {
	windowStart := state.dayLowEnd.On(now)
	if now.After(windowStart) {
		windowStart = now
	}
	planned := state.dischargeSlot.Estimate(snapshot, windowStart, state.eveningPeakHours())

	for i := 0; i < domain.NumDischargeSlots; i++ {
		observed := snapshot.DischargeSlots[i]
		if i < len(planned) {
			state.writeSlot(i, planned[i], observed, now)
		} else {
			state.disableSlot(i, observed, now)
		}
	}
}

func (state *SolarControlActor) writeSlot(i int, slot domain.BatteryDischargeSlot, observed domain.DischargeSlotState, now time.Time) {
	window := domain.DailyWindow{
		Start: domain.TimeOfDay{Hour: slot.Start.Hour(), Minute: slot.Start.Minute()},
		End:   domain.TimeOfDay{Hour: slot.End.Hour(), Minute: slot.End.Minute()},
	}
	if observed.Enabled && observed.Window == window && observed.Current == slot.Current {
		return
	}
	enabledId, startId, endId, currentId := state.config.Entities.SlotEntities(i)
	state.logger.Info("solar_control: write discharge slot",
		zap.Int("slot", i+1), zap.String("window", window.String()),
		zap.Float64("current_a", float64(slot.Current)))

	state.callBlocking(hass.ServiceSetTime, map[string]any{"entity_id": startId, "time": window.Start.String()})
	state.callBlocking(hass.ServiceSetTime, map[string]any{"entity_id": endId, "time": window.End.String()})
	state.callBlocking(hass.ServiceSetNumber, map[string]any{"entity_id": currentId, "value": float64(slot.Current)})
	state.callBlocking(hass.ServiceTurnOn, map[string]any{"entity_id": enabledId})

	state.recordDecision(fmt.Sprintf("discharge_slot_%d", i+1), enabledId,
		fmt.Sprintf("%s @ %sA", window, formatFloat(float64(slot.Current))), now)
}

func (state *SolarControlActor) disableSlot(i int, observed domain.DischargeSlotState, now time.Time) {
	if !observed.Enabled {
		return
	}
	enabledId, _, _, _ := state.config.Entities.SlotEntities(i)
	state.logger.Info("solar_control: disable discharge slot", zap.Int("slot", i+1))
	state.callBlocking(hass.ServiceTurnOff, map[string]any{"entity_id": enabledId})
	state.recordDecision(fmt.Sprintf("discharge_slot_%d", i+1), enabledId, "off", now)
}

func (state *SolarControlActor) applyMaxCurrents(snapshot domain.State, now time.Time) {
	if target := state.maxCurrent.EstimateChargeCurrent(snapshot, now); target != nil {
		state.setNumber("max_charge_current", state.config.Entities.MaxChargeCurrent, float64(*target), now)
	}
	if target := state.maxCurrent.EstimateDischargeCurrent(snapshot, now); target != nil {
		state.setNumber("max_discharge_current", state.config.Entities.MaxDischargeCurrent, float64(*target), now)
	}
}

func (state *SolarControlActor) setNumber(setpoint, entityId string, value float64, now time.Time) {
	state.logger.Info("solar_control: set number",
		zap.String("setpoint", setpoint), zap.String("entity", entityId), zap.Float64("value", value))
	state.caller.CallAsync(hass.ServiceSetNumber, map[string]any{
		"entity_id": entityId,
		"value":     value,
	}, state.logServiceResult(hass.ServiceSetNumber, entityId))
	state.recordDecision(setpoint, entityId, formatFloat(value), now)
}

func (state *SolarControlActor) callBlocking(service string, data map[string]any) {
	if _, err := state.caller.Call(service, data); err != nil {
		state.logger.Error("solar_control: service call failed",
			zap.String("service", service), zap.Any("data", data), zap.Error(err))
	}
}

func (state *SolarControlActor) logServiceResult(service, entityId string) func(*port.ServiceResult, error) {
	return func(_ *port.ServiceResult, err error) {
		if err != nil {
			state.logger.Error("solar_control: service call failed",
				zap.String("service", service), zap.String("entity", entityId), zap.Error(err))
		}
	}
}

func (state *SolarControlActor) recordDecision(setpoint, entityId, value string, now time.Time) {
	state.totalApplied++
	state.decisions = append(state.decisions, domain.AppliedDecision{
		Actor:    domain.ACTOR_ID_SOLAR_CONTROL,
		Setpoint: setpoint,
		Entity:   entityId,
		Value:    value,
		At:       now,
	})
	if len(state.decisions) > maxRecordedDecisions {
		state.decisions = state.decisions[len(state.decisions)-maxRecordedDecisions:]
	}
}

// eveningPeakHours is the wall-clock span from the end of the day low
// tariff to the start of the night low tariff.
func (state *SolarControlActor) eveningPeakHours() int {
	minutes := state.nightLowStart.Minutes() - state.dayLowEnd.Minutes()
	if minutes < 0 {
		minutes += 24 * 60
	}
	return minutes / 60
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
