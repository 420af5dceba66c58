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

	adactor "thermacore/internal/adapter/actor"
	"thermacore/internal/adapter/audio"
	"thermacore/internal/adapter/storage"
	"thermacore/internal/adapter/unitservice"
	"thermacore/internal/config"
	"thermacore/internal/core/actor"
	"thermacore/internal/core/domain"
	"thermacore/internal/core/port"
	"thermacore/internal/core/service"
	"thermacore/internal/metrics"
	"thermacore/internal/server"
	"thermacore/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	slog.Info("Using", "config", cfg.Redacted())

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	store, err := storage.NewFromConfig(startCtx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("main: could not open storage", zap.Error(err))
	}
	defer store.Close()

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	es := &eventstream.EventStream{}

	settings := service.NewSettingsStore(store, logger,
		service.WithSettingsKey(cfg.Storage.SettingsKey),
		service.WithDefaultVolume(cfg.Settings.DefaultVolume),
		service.WithSettingsEvents(es),
		service.WithSettingsMetrics(recorder),
	)
	settings.Hydrate(startCtx)

	units, notifications := unitService(cfg, logger)

	ledger := service.NewNotificationLedger(store, cfg.Notifications.ResolvedIds, recorder, logger)
	ledger.HydrateViewed(startCtx)
	if err := ledger.Load(startCtx, notifications); err != nil {
		logger.Warn("main: could not load notifications", zap.Error(err))
	}

	directory := service.NewUnitDirectory(units, logger)
	if err := directory.Load(startCtx); err != nil {
		logger.Warn("main: could not load units", zap.Error(err))
	}

	deps := actor.MasterDeps{
		UnitControl: actor.UnitControlDeps{
			UnitService: units,
			Sound:       audio.NewEventSink(es, logger),
			Volume:      settings,
			Metrics:     recorder,
		},
		Settings:    settings,
		EventStream: es,
	}
	if cfg.MQTT.Enable {
		deps.MQTTActorProvider = mqttActorProvider(cfg, logger)
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, deps, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		logger.Error("main: could not spawn master actor", zap.Error(err))
		return
	}

	server := server.NewServer(*cfg, server.Deps{
		RootContext: ctx,
		MasterActor: pid,
		Settings:    settings,
		Ledger:      ledger,
		Units:       directory,
		Metrics:     recorder.HTTPHandler(),
		Logger:      logger,
	})
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

// unitService picks the remote unit service when a base url is configured
// and the built-in demo data otherwise.
func unitService(cfg *config.Config, logger *zap.Logger) (port.UnitService, port.NotificationSource) {
	if cfg.UnitService.BaseURL == "" {
		logger.Info("main: no unit service configured, using demo data")
		mock := unitservice.NewMockUnitService()
		return mock, mock
	}
	timeout := time.Duration(cfg.UnitService.TimeoutMillis) * time.Millisecond
	svc := unitservice.NewHTTPUnitService(cfg.UnitService.BaseURL, timeout, logger)
	return svc, svc
}

func initConfig() (*config.Config, error) {

	// alias PORT => THERMACORE_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("THERMACORE_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("thermacore")
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
	case "trace", "debug":
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

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("port", 8080)
	viper.SetDefault("http_log", false)
	viper.SetDefault("storage.backend", storage.BACKEND_MEMORY)
	viper.SetDefault("storage.sqlite_path", "thermacore.db")
	viper.SetDefault("storage.redis_addr", "localhost:6379")
	viper.SetDefault("storage.redis_key_prefix", "thermacore:")
	viper.SetDefault("storage.timeout_millis", 2000)
	viper.SetDefault("storage.settings_key", service.SETTINGS_KEY)
	viper.SetDefault("mqtt.enable", false)
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.base_topic", "thermacore")
	viper.SetDefault("settings.default_volume", domain.DEFAULT_VOLUME)
	viper.SetDefault("notifications.resolved_ids", []int{3, 4, 5})
	viper.SetDefault("unit_service.timeout_millis", 5000)
}
