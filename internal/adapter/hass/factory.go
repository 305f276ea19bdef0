package hass

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tariffpilot/internal/config"
	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultStateFactory builds controller snapshots from the statestream
// cache. Mandatory fields that are missing are collected and reported in a
// single error so one log line names everything that kept the tick from
// running; optional fields fall back silently.
type DefaultStateFactory struct {
	reader   port.StateReader
	entities config.EntitiesConfig
	logger   *zap.Logger
}

func NewDefaultStateFactory(reader port.StateReader, entities config.EntitiesConfig, logger *zap.Logger) *DefaultStateFactory {
	return &DefaultStateFactory{
		reader:   reader,
		entities: entities,
		logger:   logger,
	}
}

// snapshotReader accumulates the names of missing mandatory entities while
// reading one snapshot.
type snapshotReader struct {
	reader  port.StateReader
	missing []string
}

func (r *snapshotReader) state(entityId string) (string, bool) {
	value, ok := r.reader.GetState(entityId)
	if !ok {
		r.missing = append(r.missing, entityId)
	}
	return value, ok
}

func (r *snapshotReader) float(entityId string) float64 {
	value, ok := r.state(entityId)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.missing = append(r.missing, entityId)
		return 0
	}
	return f
}

func (r *snapshotReader) boolValue(entityId string) bool {
	value, ok := r.state(entityId)
	if !ok {
		return false
	}
	switch strings.ToLower(value) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}

func (r *snapshotReader) timeOfDay(entityId string) domain.TimeOfDay {
	value, ok := r.state(entityId)
	if !ok {
		return domain.TimeOfDay{}
	}
	tod, err := domain.ParseTimeOfDay(value)
	if err != nil {
		r.missing = append(r.missing, entityId)
		return domain.TimeOfDay{}
	}
	return tod
}

// optionalAttribute reads an attribute without recording it as missing.
func (r *snapshotReader) optionalAttribute(reader port.StateReader, entityId, attribute string) (string, bool) {
	if entityId == "" {
		return "", false
	}
	return reader.GetAttribute(entityId, attribute)
}

func (r *snapshotReader) err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing mandatory state: %s", strings.Join(r.missing, ", "))
}

// forecastAttribute is the statestream field under which the host
// integrations publish their forecast series.
const forecastAttribute = "forecast"

func (f *DefaultStateFactory) BuildSolar(now time.Time) (*domain.State, error) {
	r := &snapshotReader{reader: f.reader}
	e := f.entities

	state := &domain.State{
		BatterySoc:          domain.ClampSoc(r.float(e.BatterySoc)),
		BatteryReserveSoc:   domain.ClampSoc(r.float(e.BatteryReserveSoc)),
		TempIndoor:          domain.Celsius(r.float(e.TempIndoor)),
		TempOutdoor:         domain.Celsius(r.float(e.TempOutdoor)),
		AwayMode:            r.boolValue(e.AwayMode),
		EcoMode:             r.boolValue(e.EcoMode),
		MaxChargeCurrent:    safeAmps(r.float(e.MaxChargeCurrent)),
		MaxDischargeCurrent: safeAmps(r.float(e.MaxDischargeCurrent)),
	}

	if raw, ok := r.state(e.StorageMode); ok {
		mode, err := domain.ParseStorageMode(raw)
		if err != nil {
			r.missing = append(r.missing, e.StorageMode)
		}
		state.StorageMode = mode
	}

	if raw, ok := r.state(e.HeatingMode); ok {
		state.HeatingMode = raw
	}

	if raw, ok := r.state(e.HourlyPrice); ok {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			r.missing = append(r.missing, e.HourlyPrice)
		} else {
			state.CurrentPrice = domain.PlnPerMwh(amount)
		}
	}

	for i := 0; i < domain.NumDischargeSlots; i++ {
		enabled, start, end, current := e.SlotEntities(i)
		state.DischargeSlots[i] = domain.DischargeSlotState{
			Enabled: r.boolValue(enabled),
			Window: domain.DailyWindow{
				Start: r.timeOfDay(start),
				End:   r.timeOfDay(end),
			},
			Current: safeAmps(r.float(current)),
		}
	}

	// forecast series are optional; absent hours behave as zero
	if raw, ok := r.optionalAttribute(f.reader, e.PvForecastToday, forecastAttribute); ok {
		state.ProductionToday = ParsePvForecast(raw, f.logger)
	}
	if raw, ok := r.optionalAttribute(f.reader, e.PvForecastTomorrow, forecastAttribute); ok {
		state.ProductionTomorrow = ParsePvForecast(raw, f.logger)
	}
	if raw, ok := r.optionalAttribute(f.reader, e.PvForecastDay3, forecastAttribute); ok {
		state.ProductionDay3 = ParsePvForecast(raw, f.logger)
	}
	if raw, ok := r.optionalAttribute(f.reader, e.WeatherForecast, forecastAttribute); ok {
		state.Weather = ParseWeatherForecast(raw, f.logger)
	}
	if raw, ok := r.optionalAttribute(f.reader, e.PriceForecast, forecastAttribute); ok {
		state.Prices = ParsePriceForecast(raw, f.logger)
	}

	if err := r.err(); err != nil {
		return nil, err
	}
	return state, nil
}

func (f *DefaultStateFactory) BuildHvac(now time.Time) (*domain.HvacState, error) {
	r := &snapshotReader{reader: f.reader}
	e := f.entities

	state := &domain.HvacState{
		EcoMode:       r.boolValue(e.EcoMode),
		DhwActual:     domain.Celsius(r.float(e.DhwActual)),
		DhwTarget:     domain.Celsius(r.float(e.DhwTarget)),
		IndoorActual:  domain.Celsius(r.float(e.TempIndoor)),
		HeatingTarget: domain.Celsius(r.float(e.HeatingTarget)),
		CoolingTarget: domain.Celsius(r.float(e.CoolingTarget)),
		CurveHigh:     domain.Celsius(r.float(e.CurveHigh)),
		CurveLow:      domain.Celsius(r.float(e.CurveLow)),
	}

	if raw, ok := r.state(e.HeatingMode); ok {
		state.HeatingMode = raw
	}

	// external adjustment is optional and defaults to zero
	if raw, ok := f.reader.GetState(e.TempAdjustment); ok {
		if adj, err := strconv.ParseFloat(raw, 64); err == nil {
			state.TemperatureAdjustment = domain.Celsius(adj)
		}
	}

	if err := r.err(); err != nil {
		return nil, err
	}
	return state, nil
}

func safeAmps(value float64) domain.BatteryCurrent {
	if value < 0 {
		return 0
	}
	return domain.Amps(value)
}

// ensure interface compliance
var _ port.StateFactory = (*DefaultStateFactory)(nil)
