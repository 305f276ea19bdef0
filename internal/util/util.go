package util

import (
	"tariffpilot/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			StatestreamTopic: "homeassistant/statestream",
			ServiceTopic:     "tariffpilot/service_call",
		},
		Entities: config.EntitiesConfig{
			BatterySoc:          "sensor.battery_soc",
			BatteryReserveSoc:   "number.battery_reserve_soc",
			TempIndoor:          "sensor.temp_indoor",
			TempOutdoor:         "sensor.temp_outdoor",
			AwayMode:            "input_boolean.away_mode",
			EcoMode:             "input_boolean.eco_mode",
			StorageMode:         "select.storage_mode",
			MaxChargeCurrent:    "number.max_charge_current",
			MaxDischargeCurrent: "number.max_discharge_current",
			HeatingMode:         "climate.heat_pump",
			HourlyPrice:         "sensor.hourly_price",
			PriceForecast:       "sensor.price_forecast",
			PvForecastToday:     "sensor.pv_forecast_today",
			PvForecastTomorrow:  "sensor.pv_forecast_tomorrow",
			PvForecastDay3:      "sensor.pv_forecast_day3",
			WeatherForecast:     "sensor.weather_forecast",
			Slot1Enabled:        "switch.slot1_enabled",
			Slot1Start:          "time.slot1_start",
			Slot1End:            "time.slot1_end",
			Slot1Current:        "number.slot1_current",
			Slot2Enabled:        "switch.slot2_enabled",
			Slot2Start:          "time.slot2_start",
			Slot2End:            "time.slot2_end",
			Slot2Current:        "number.slot2_current",
			DhwActual:           "sensor.dhw_actual",
			DhwTarget:           "number.dhw_target",
			DhwDelta:            "number.dhw_delta",
			HeatingTarget:       "number.heating_target",
			CoolingTarget:       "number.cooling_target",
			CurveHigh:           "number.curve_high",
			CurveLow:            "number.curve_low",
			TempAdjustment:      "number.temp_adjustment",
			SolarTriggers:       []string{"sensor.hourly_price"},
			HvacTriggers:        []string{"input_boolean.eco_mode"},
		},
		Battery: config.BatteryConfig{
			CapacityKwh:        10,
			Voltage:            400,
			MaximumCurrent:     80,
			NominalCurrent:     25,
			NightChargeCurrent: 50,
			ReserveSocMin:      20,
			ReserveSocMargin:   5,
			ReserveSocMax:      80,
		},
		Tariff: config.TariffConfig{
			NightLowStart:                "22:00",
			NightLowEnd:                  "07:00",
			DayLowStart:                  "13:00",
			DayLowEnd:                    "16:00",
			PvExportMinPriceMargin:       150,
			BatteryExportThresholdPrice:  750,
			BatteryExportThresholdEnergy: 1,
		},
		Consumption: config.ConsumptionConfig{
			EveningStartHour: 17,
			AwayKwh:          0.3,
			DayKwh:           0.5,
			EveningKwh:       1.2,
		},
		HeatingModel: config.HeatingModelConfig{
			CopAt7C:             3.5,
			HeatLossKwPerC:      0.15,
			TempOutFallback:     7,
			HumidityOutFallback: 60,
		},
		Dhw: config.DhwConfig{
			TargetEcoOn:  48,
			TargetEcoOff: 50,
			DeltaEcoOn:   8,
			DeltaEcoOff:  8,
			BoostStart:   "13:00",
			BoostEnd:     "16:00",
		},
		Heating: config.HeatingConfig{
			TempEcoOn:        18,
			TempEcoOff:       20,
			BoostEcoOnStart:  "13:00",
			BoostEcoOnEnd:    "16:00",
			BoostEcoOffStart: "06:00",
			BoostEcoOffEnd:   "22:00",
		},
		Cooling: config.CoolingConfig{
			TargetEcoOn:      25,
			TargetEcoOff:     24,
			BoostDelta:       2,
			BoostEcoOnStart:  "13:00",
			BoostEcoOnEnd:    "16:00",
			BoostEcoOffStart: "11:00",
			BoostEcoOffEnd:   "17:00",
		},
		Control: config.ControlConfig{
			SolarTickMinutes: 5,
			HvacTickMinutes:  5,
			DryRun:           true,
		},
		TimeZone: "Europe/Warsaw",
		Port:     8080,
	}
}
