package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "tariffpilot/internal/adapter/actor"
	"tariffpilot/internal/adapter/hass"
	"tariffpilot/internal/adapter/sched"
	"tariffpilot/internal/config"
	"tariffpilot/internal/core/actor"
	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/port"
	"tariffpilot/internal/server"
	"tariffpilot/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, scheduler port.Scheduler, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	scheduler.Stop()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)
	slog.Info("tariffpilot", "version", versioninfo.Short())

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	location, err := cfg.Location()
	if err != nil {
		panic(err)
	}
	clock := sched.LocationClock{Location: location}

	// shared statestream client: cache reads, service call writes
	client := hass.NewStatestreamClient(cfg, hass.OptsFromConfig(cfg))
	factory := hass.NewDefaultStateFactory(client, cfg.Entities, logger)
	caller := serviceCaller(cfg, client, logger)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, mqttActorProvider(client, logger), factory, caller, clock, logger)
	})
	pid, err := ctx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		return
	}

	scheduler, err := startScheduler(cfg, location, ctx, pid, logger)
	if err != nil {
		panic(err)
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, scheduler, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

// startScheduler wires the periodic control ticks plus a tick at each tariff
// boundary, where the reserve plan flips between its branches.
func startScheduler(cfg *config.Config, location *time.Location, ctx *pactor.RootContext,
	master *pactor.PID, logger *zap.Logger) (port.Scheduler, error) {

	scheduler := sched.NewQuartzScheduler(location, logger)

	solarTick := func() { ctx.Send(master, domain.SolarControlTick{}) }
	hvacTick := func() { ctx.Send(master, domain.HvacControlTick{}) }

	if err := scheduler.Every("solar_control_tick",
		time.Duration(cfg.Control.SolarTickMinutes)*time.Minute, solarTick); err != nil {
		return nil, err
	}
	if err := scheduler.Every("hvac_control_tick",
		time.Duration(cfg.Control.HvacTickMinutes)*time.Minute, hvacTick); err != nil {
		return nil, err
	}

	boundaries := map[string]string{
		"night_low_tariff_start": cfg.Tariff.NightLowStart,
		"night_low_tariff_end":   cfg.Tariff.NightLowEnd,
		"day_low_tariff_start":   cfg.Tariff.DayLowStart,
		"day_low_tariff_end":     cfg.Tariff.DayLowEnd,
	}
	for name, at := range boundaries {
		timeOfDay, err := domain.ParseTimeOfDay(at)
		if err != nil {
			return nil, err
		}
		if err := scheduler.Daily(name, timeOfDay, solarTick); err != nil {
			return nil, err
		}
	}

	scheduler.Start(context.Background())
	return scheduler, nil
}

func initConfig() (*config.Config, error) {

	// alias PORT => TARIFFPILOT_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("TARIFFPILOT_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("tariffpilot")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func serviceCaller(cfg *config.Config, client *hass.StatestreamClient, logger *zap.Logger) port.ServiceCaller {
	if cfg.Control.DryRun {
		slog.Info("dry run enabled: set-points will be logged, not written")
		return &hass.DryRunServiceCaller{Logger: logger}
	}
	return hass.NewMQTTServiceCaller(client, cfg.MQTT.ServiceTopic, logger)
}

func mqttActorProvider(client *hass.StatestreamClient, logger *zap.Logger) actor.MQTTActorProvider {
	return func(eventStream *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(client, eventStream, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.statestream_topic", "homeassistant/statestream")
	viper.SetDefault("mqtt.service_topic", "tariffpilot/service_call")
	viper.SetDefault("battery.voltage", 400)
	viper.SetDefault("battery.maximum_current", 80)
	viper.SetDefault("battery.nominal_current", 25)
	viper.SetDefault("battery.night_charge_current", 50)
	viper.SetDefault("battery.reserve_soc_min", 20)
	viper.SetDefault("battery.reserve_soc_margin", 5)
	viper.SetDefault("battery.reserve_soc_max", 80)
	viper.SetDefault("tariff.night_low_tariff_start", "22:00")
	viper.SetDefault("tariff.night_low_tariff_end", "07:00")
	viper.SetDefault("tariff.day_low_tariff_start", "13:00")
	viper.SetDefault("tariff.day_low_tariff_end", "16:00")
	viper.SetDefault("tariff.pv_export_min_price_margin", 150)
	viper.SetDefault("tariff.battery_export_threshold_price", 750)
	viper.SetDefault("tariff.battery_export_threshold_energy", 1)
	viper.SetDefault("consumption.evening_start_hour", 17)
	viper.SetDefault("consumption.away_kwh", 0.3)
	viper.SetDefault("consumption.day_kwh", 0.5)
	viper.SetDefault("consumption.evening_kwh", 1.2)
	viper.SetDefault("heating_model.cop_at_7c", 3.5)
	viper.SetDefault("heating_model.heat_loss_kw_per_c", 0.15)
	viper.SetDefault("heating_model.temp_out_fallback", 7)
	viper.SetDefault("heating_model.humidity_out_fallback", 60)
	viper.SetDefault("dhw.target_eco_on", 48)
	viper.SetDefault("dhw.target_eco_off", 50)
	viper.SetDefault("dhw.delta_eco_on", 8)
	viper.SetDefault("dhw.delta_eco_off", 8)
	viper.SetDefault("dhw.boost_start", "13:00")
	viper.SetDefault("dhw.boost_end", "16:00")
	viper.SetDefault("heating.temp_eco_on", 18)
	viper.SetDefault("heating.temp_eco_off", 20)
	viper.SetDefault("heating.boost_eco_on_start", "13:00")
	viper.SetDefault("heating.boost_eco_on_end", "16:00")
	viper.SetDefault("heating.boost_eco_off_start", "06:00")
	viper.SetDefault("heating.boost_eco_off_end", "22:00")
	viper.SetDefault("cooling.target_eco_on", 25)
	viper.SetDefault("cooling.target_eco_off", 24)
	viper.SetDefault("cooling.boost_delta", 2)
	viper.SetDefault("cooling.boost_eco_on_start", "13:00")
	viper.SetDefault("cooling.boost_eco_on_end", "16:00")
	viper.SetDefault("cooling.boost_eco_off_start", "11:00")
	viper.SetDefault("cooling.boost_eco_off_end", "17:00")
	viper.SetDefault("control.solar_tick_minutes", 5)
	viper.SetDefault("control.hvac_tick_minutes", 5)
	viper.SetDefault("control.dry_run", false)
	viper.SetDefault("time_zone", "")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
