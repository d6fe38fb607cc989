package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/SainandaG/badmintion-stringing/internal/agents"
	"github.com/SainandaG/badmintion-stringing/internal/config"
	"github.com/SainandaG/badmintion-stringing/internal/eta"
	"github.com/SainandaG/badmintion-stringing/internal/geo"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
	"github.com/SainandaG/badmintion-stringing/internal/knowledge"
	"github.com/SainandaG/badmintion-stringing/internal/notify"
	"github.com/SainandaG/badmintion-stringing/internal/orders"
	"github.com/SainandaG/badmintion-stringing/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(resolveConfigPath())
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Graph store.
	var graphClient graph.GraphClient
	neo4jClient, err := graph.NewNeo4jClient(graph.Config{
		URI:                   cfg.Neo4j.URI,
		Username:              cfg.Neo4j.Username,
		Password:              cfg.Neo4j.Password,
		Database:              cfg.Neo4j.Database,
		MaxConnectionPoolSize: cfg.Neo4j.MaxConnections,
		ConnectionTimeout:     cfg.Neo4j.ConnectionTimeout,
	})
	if err != nil {
		return err
	}
	graphClient = neo4jClient

	if cfg.Tracing.Enabled {
		graphClient = graph.NewTracedClient(graphClient, otel.Tracer("stringing"))
	}

	if err := graphClient.Connect(ctx); err != nil {
		return err
	}
	defer graphClient.Close(context.Background())

	// ETA predictor.
	sampleStore, err := eta.OpenSampleStore(cfg.ETA.SamplesPath)
	if err != nil {
		return err
	}
	defer sampleStore.Close()

	predictor := eta.NewPredictor(sampleStore, eta.Config{
		MinSamples:  cfg.ETA.MinSamples,
		FallbackKmh: cfg.ETA.FallbackKmh,
	}, logger)
	if err := predictor.Train(ctx); err != nil {
		logger.Info("eta predictor starting in fallback mode", "reason", err)
	}

	// Notifications.
	var notifier notify.Notifier = notify.Noop{}
	if cfg.Twilio.Enabled() {
		notifier = notify.NewTwilioNotifier(notify.Config{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			FromNumber: cfg.Twilio.FromNumber,
			BaseURL:    cfg.Twilio.BaseURL,
		}, logger)
	}

	// Services.
	geocoder := geo.NewNominatimClient(geo.Config{
		BaseURL:        cfg.Geocode.BaseURL,
		UserAgent:      cfg.Geocode.UserAgent,
		Timeout:        cfg.Geocode.Timeout,
		RequestsPerSec: cfg.Geocode.RequestsPerSec,
	}, logger)

	orderSvc := orders.NewService(graphClient, geocoder, logger)
	agentSvc := agents.NewService(graphClient, notifier, predictor, logger)
	knowledgeSvc := knowledge.NewService(graphClient, logger,
		knowledge.WithHistorySearcher(orderSvc))

	srv := server.New(knowledgeSvc, orderSvc, agentSvc, graphClient, logger, server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
