package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Capstone-E1/soilsense_backend/config"
	httphandlers "github.com/Capstone-E1/soilsense_backend/internal/http"
	"github.com/Capstone-E1/soilsense_backend/internal/metrics"
	"github.com/Capstone-E1/soilsense_backend/internal/mqtt"
	"github.com/Capstone-E1/soilsense_backend/internal/services"
	"github.com/Capstone-E1/soilsense_backend/internal/store"
	"github.com/Capstone-E1/soilsense_backend/internal/views"
	"github.com/Capstone-E1/soilsense_backend/internal/ws"
)

// Run loads the dataset once, then serves HTTP until ctx is cancelled
func Run(ctx context.Context, cfg *config.Config) error {
	slog.Info("config loaded",
		"env", cfg.App.Env,
		"logLevel", cfg.App.LogLevel.String(),
		"port", cfg.Server.Port,
		"dataSource", cfg.Data.Source,
		"dataFile", cfg.Data.File,
		"dataTimezone", cfg.Data.Location.String(),
		"recentWindow", cfg.Data.RecentWindow,
		"feedInterval", cfg.Feed.Interval,
		"mqttBroker", cfg.MQTT.BrokerURL,
	)

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	m := metrics.New()
	dataStore := store.NewStore()
	schema := services.DefaultSchema()

	source, closeSource, err := OpenSource(ctx, cfg)
	if err != nil {
		// Unreachable source: same outcome as a failed load
		slog.Error("dataset load failed, serving empty dataset", "kind", "source", "error", err)
		dataStore.MarkLoadFailed(cfg.Data.Source, err)
		m.RecordLoadFailure("source")
	} else {
		loader := services.NewLoader(source, services.NewNormalizer(schema, cfg.Data.Location))
		LoadDataset(ctx, loader, dataStore, m)
		// Loaded exactly once; the source is not needed afterwards
		closeSource()
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	publishers := []services.FeedPublisher{wsHub}

	if cfg.MQTT.BrokerURL != "" {
		mqttClient := mqtt.NewClient(cfg.MQTT)
		if err := mqttClient.Connect(); err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		} else {
			publishers = append(publishers, mqttClient)
			defer mqttClient.Disconnect()
		}
	} else {
		slog.Info("MQTT broker not configured, skipping feed publishing")
	}

	feed := services.NewFeed(dataStore, m, publishers...)

	pacer := services.NewFeedPacer(feed, cfg.Feed.Interval)
	pacer.Start()
	defer pacer.Stop()

	handlers := httphandlers.NewHandlers(dataStore, feed, schema, cfg.Data.RecentWindow)
	router := httphandlers.SetupRoutes(cfg.Server, handlers, wsHub, promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

var (
	_ services.FeedPublisher = (*ws.Hub)(nil)
	_ services.FeedPublisher = (*mqtt.Client)(nil)
	_ store.DataStore        = (*store.Store)(nil)
)
