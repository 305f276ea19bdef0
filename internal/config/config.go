package config

import (
	"fmt"
	"time"

	"tariffpilot/internal/core/domain"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Entities EntitiesConfig `mapstructure:"entities"`

	Battery      BatteryConfig      `mapstructure:"battery"`
	Tariff       TariffConfig       `mapstructure:"tariff"`
	Consumption  ConsumptionConfig  `mapstructure:"consumption"`
	HeatingModel HeatingModelConfig `mapstructure:"heating_model"`
	Dhw          DhwConfig          `mapstructure:"dhw"`
	Heating      HeatingConfig      `mapstructure:"heating"`
	Cooling      CoolingConfig      `mapstructure:"cooling"`
	Control      ControlConfig      `mapstructure:"control"`

	TimeZone string `mapstructure:"time_zone"`
	Port     uint   `mapstructure:"port"`
	HttpLog  bool   `mapstructure:"http_log"`
}

type MQTTConfig struct {
	Host             string
	Port             int
	Username         string
	Password         string
	StatestreamTopic string `mapstructure:"statestream_topic"`
	ServiceTopic     string `mapstructure:"service_topic"`
}

type BatteryConfig struct {
	CapacityKwh        float64 `mapstructure:"capacity_kwh"`
	Voltage            float64 `mapstructure:"voltage"`
	MaximumCurrent     float64 `mapstructure:"maximum_current"`
	NominalCurrent     float64 `mapstructure:"nominal_current"`
	NightChargeCurrent float64 `mapstructure:"night_charge_current"`
	ReserveSocMin      float64 `mapstructure:"reserve_soc_min"`
	ReserveSocMargin   float64 `mapstructure:"reserve_soc_margin"`
	ReserveSocMax      float64 `mapstructure:"reserve_soc_max"`
}

type TariffConfig struct {
	NightLowStart                string  `mapstructure:"night_low_tariff_start"`
	NightLowEnd                  string  `mapstructure:"night_low_tariff_end"`
	DayLowStart                  string  `mapstructure:"day_low_tariff_start"`
	DayLowEnd                    string  `mapstructure:"day_low_tariff_end"`
	PvExportMinPriceMargin       float64 `mapstructure:"pv_export_min_price_margin"`
	BatteryExportThresholdPrice  float64 `mapstructure:"battery_export_threshold_price"`
	BatteryExportThresholdEnergy float64 `mapstructure:"battery_export_threshold_energy"`
}

type ConsumptionConfig struct {
	EveningStartHour int     `mapstructure:"evening_start_hour"`
	AwayKwh          float64 `mapstructure:"away_kwh"`
	DayKwh           float64 `mapstructure:"day_kwh"`
	EveningKwh       float64 `mapstructure:"evening_kwh"`
}

type HeatingModelConfig struct {
	CopAt7C             float64 `mapstructure:"cop_at_7c"`
	HeatLossKwPerC      float64 `mapstructure:"heat_loss_kw_per_c"`
	TempOutFallback     float64 `mapstructure:"temp_out_fallback"`
	HumidityOutFallback float64 `mapstructure:"humidity_out_fallback"`
}

type DhwConfig struct {
	TargetEcoOn  float64 `mapstructure:"target_eco_on"`
	TargetEcoOff float64 `mapstructure:"target_eco_off"`
	DeltaEcoOn   float64 `mapstructure:"delta_eco_on"`
	DeltaEcoOff  float64 `mapstructure:"delta_eco_off"`
	BoostStart   string  `mapstructure:"boost_start"`
	BoostEnd     string  `mapstructure:"boost_end"`
}

type HeatingConfig struct {
	TempEcoOn        float64 `mapstructure:"temp_eco_on"`
	TempEcoOff       float64 `mapstructure:"temp_eco_off"`
	BoostEcoOnStart  string  `mapstructure:"boost_eco_on_start"`
	BoostEcoOnEnd    string  `mapstructure:"boost_eco_on_end"`
	BoostEcoOffStart string  `mapstructure:"boost_eco_off_start"`
	BoostEcoOffEnd   string  `mapstructure:"boost_eco_off_end"`
}

type CoolingConfig struct {
	TargetEcoOn      float64 `mapstructure:"target_eco_on"`
	TargetEcoOff     float64 `mapstructure:"target_eco_off"`
	BoostDelta       float64 `mapstructure:"boost_delta"`
	BoostEcoOnStart  string  `mapstructure:"boost_eco_on_start"`
	BoostEcoOnEnd    string  `mapstructure:"boost_eco_on_end"`
	BoostEcoOffStart string  `mapstructure:"boost_eco_off_start"`
	BoostEcoOffEnd   string  `mapstructure:"boost_eco_off_end"`
}

type ControlConfig struct {
	SolarTickMinutes uint32 `mapstructure:"solar_tick_minutes"`
	HvacTickMinutes  uint32 `mapstructure:"hvac_tick_minutes"`
	DryRun           bool   `mapstructure:"dry_run"`
}

// EntitiesConfig names the host entities the controller reads and writes.
type EntitiesConfig struct {
	BatterySoc          string `mapstructure:"battery_soc"`
	BatteryReserveSoc   string `mapstructure:"battery_reserve_soc"`
	TempIndoor          string `mapstructure:"temp_indoor"`
	TempOutdoor         string `mapstructure:"temp_outdoor"`
	AwayMode            string `mapstructure:"away_mode"`
	EcoMode             string `mapstructure:"eco_mode"`
	StorageMode         string `mapstructure:"storage_mode"`
	MaxChargeCurrent    string `mapstructure:"max_charge_current"`
	MaxDischargeCurrent string `mapstructure:"max_discharge_current"`
	HeatingMode         string `mapstructure:"heating_mode"`
	HourlyPrice         string `mapstructure:"hourly_price"`
	PriceForecast       string `mapstructure:"price_forecast"`
	PvForecastToday     string `mapstructure:"pv_forecast_today"`
	PvForecastTomorrow  string `mapstructure:"pv_forecast_tomorrow"`
	PvForecastDay3      string `mapstructure:"pv_forecast_day3"`
	WeatherForecast     string `mapstructure:"weather_forecast"`

	Slot1Enabled string `mapstructure:"slot1_enabled"`
	Slot1Start   string `mapstructure:"slot1_start"`
	Slot1End     string `mapstructure:"slot1_end"`
	Slot1Current string `mapstructure:"slot1_current"`
	Slot2Enabled string `mapstructure:"slot2_enabled"`
	Slot2Start   string `mapstructure:"slot2_start"`
	Slot2End     string `mapstructure:"slot2_end"`
	Slot2Current string `mapstructure:"slot2_current"`

	DhwActual      string `mapstructure:"dhw_actual"`
	DhwTarget      string `mapstructure:"dhw_target"`
	DhwDelta       string `mapstructure:"dhw_delta"`
	HeatingTarget  string `mapstructure:"heating_target"`
	CoolingTarget  string `mapstructure:"cooling_target"`
	CurveHigh      string `mapstructure:"curve_high"`
	CurveLow       string `mapstructure:"curve_low"`
	TempAdjustment string `mapstructure:"temp_adjustment"`

	// SolarTriggers and HvacTriggers re-run the respective control tick on
	// a statestream change.
	SolarTriggers []string `mapstructure:"solar_triggers"`
	HvacTriggers  []string `mapstructure:"hvac_triggers"`
}

// SlotEntities returns the entity IDs of discharge slot i (0-based).
func (e EntitiesConfig) SlotEntities(i int) (enabled, start, end, current string) {
	if i == 0 {
		return e.Slot1Enabled, e.Slot1Start, e.Slot1End, e.Slot1Current
	}
	return e.Slot2Enabled, e.Slot2Start, e.Slot2End, e.Slot2Current
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// Validate checks option bounds and that every configured daily window
// parses. Estimator constructors may assume a validated config.
func (c Config) Validate() error {
	if c.Battery.CapacityKwh <= 0 {
		return fmt.Errorf("config param battery.capacity_kwh should be > 0")
	}
	if c.Battery.Voltage <= 0 {
		return fmt.Errorf("config param battery.voltage should be > 0")
	}
	if c.Battery.ReserveSocMin < 0 || c.Battery.ReserveSocMin > 100 ||
		c.Battery.ReserveSocMax < 0 || c.Battery.ReserveSocMax > 100 {
		return fmt.Errorf("config params battery.reserve_soc_min/max should be within [0, 100]")
	}
	if c.Consumption.EveningStartHour < 0 || c.Consumption.EveningStartHour > 23 {
		return fmt.Errorf("config param consumption.evening_start_hour should be within [0, 23]")
	}
	if c.HeatingModel.CopAt7C <= 0 {
		return fmt.Errorf("config param heating_model.cop_at_7c should be > 0")
	}
	if c.Control.SolarTickMinutes < 1 || c.Control.HvacTickMinutes < 1 {
		return fmt.Errorf("config params control.*_tick_minutes should be >= 1")
	}
	windows := [][2]string{
		{c.Tariff.NightLowStart, c.Tariff.NightLowEnd},
		{c.Tariff.DayLowStart, c.Tariff.DayLowEnd},
		{c.Dhw.BoostStart, c.Dhw.BoostEnd},
		{c.Heating.BoostEcoOnStart, c.Heating.BoostEcoOnEnd},
		{c.Heating.BoostEcoOffStart, c.Heating.BoostEcoOffEnd},
		{c.Cooling.BoostEcoOnStart, c.Cooling.BoostEcoOnEnd},
		{c.Cooling.BoostEcoOffStart, c.Cooling.BoostEcoOffEnd},
	}
	for _, w := range windows {
		if _, err := domain.ParseDailyWindow(w[0], w[1]); err != nil {
			return err
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config param time_zone: %w", err)
	}
	return nil
}

// MustWindow parses a daily window from an already validated Config.
func MustWindow(start, end string) domain.DailyWindow {
	w, err := domain.ParseDailyWindow(start, end)
	if err != nil {
		panic(err)
	}
	return w
}
