package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/utsav7416/smart-home-controls/db"
	"github.com/utsav7416/smart-home-controls/internal/alerts"
	"github.com/utsav7416/smart-home-controls/internal/api"
	"github.com/utsav7416/smart-home-controls/internal/backend"
	"github.com/utsav7416/smart-home-controls/internal/config"
	"github.com/utsav7416/smart-home-controls/internal/datadog"
	"github.com/utsav7416/smart-home-controls/internal/devicestore"
	"github.com/utsav7416/smart-home-controls/internal/energy"
	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/logging"
	"github.com/utsav7416/smart-home-controls/internal/notifications"
	"github.com/utsav7416/smart-home-controls/internal/usage"
	"github.com/utsav7416/smart-home-controls/system/shutdown"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("storage", cfg.StorageBackend).
		Int("port", cfg.ListenPort).
		Msg("Starting smart home controls service")

	datadog.InitMetrics(cfg.DDAgentAddr, cfg.DDNamespace, cfg.DDTags, cfg.EnableDatadog)

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage backend")
	}

	broker := keyval.NewBroker(store)
	recorder := usage.NewRecorder(broker, cfg.RetentionDays)
	devices := devicestore.New(broker, recorder)

	// Estimator poll loop: recompute from the persisted snapshot on a fixed
	// cadence and emit gauges. Widgets hitting /api/energy get their own
	// recompute; both converge on the same stored snapshot.
	cancelEstimator := broker.Poll(devicestore.SnapshotKey,
		time.Duration(cfg.EstimatorPollSeconds)*time.Second,
		func(_ string, _ error) {
			snap := energy.FromStore(broker)
			datadog.Gauge("energy.total_kwh", snap.TotalKWh)
			datadog.Gauge("energy.active_devices", float64(snap.ActiveDevices))
		})
	shutdown.Register(cancelEstimator)

	if cfg.EmailEndpoint != "" {
		notifier := notifications.NewClient(cfg.EmailEndpoint, cfg.RecipientEmail, cfg.RecipientName)
		watcher := alerts.NewWatcher(broker, notifier, time.Duration(cfg.AlertPollSeconds)*time.Second)
		watcher.Run()
		shutdown.Register(watcher.Stop)
	} else {
		log.Warn().Msg("Email endpoint not configured - usage alerts disabled")
	}

	var poller *backend.Poller
	if cfg.BackendBaseURL != "" {
		poller = backend.NewPoller(cfg.BackendBaseURL, time.Duration(cfg.BackendPollSeconds)*time.Second)
		poller.Run()
		shutdown.Register(poller.Stop)
	} else {
		log.Warn().Msg("Backend base URL not configured - geofencing and analytics pages will be empty")
	}

	server := api.NewServer(devices, recorder, broker, poller)

	go func() {
		if err := server.Start(cfg.ListenPort); err != nil {
			shutdown.ShutdownWithError(err, "API server failed")
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Signal received, shutting down")
	shutdown.Shutdown()
}

func openStore(cfg config.Config) (keyval.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendSqlite:
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		shutdown.Register(func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close database")
			}
		})
		return store, nil
	case config.BackendFile:
		return keyval.NewFile(cfg.StateFile), nil
	case config.BackendMemory:
		return keyval.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
