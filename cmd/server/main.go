package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ringsight/backend/internal/config"
	"github.com/ringsight/backend/internal/engine"
	"github.com/ringsight/backend/internal/graph"
	"github.com/ringsight/backend/internal/logging"
	"github.com/ringsight/backend/internal/repository"
	"github.com/ringsight/backend/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	// The graph mirror is optional: without GRAPH_URI the engine runs
	// standalone and results live only in the HTTP response.
	var (
		graphClient graph.Client
		sink        server.ResultSink
	)
	if cfg.Graph.URI != "" {
		graphClient, err = buildGraphClient(ctx, cfg)
		if err != nil {
			logger.Error("failed to create graph client", "error", err)
			os.Exit(1)
		}
		sink = repository.New(graphClient)
		logger.Info("graph mirror enabled", "uri", cfg.Graph.URI)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	eng := engine.New(engine.Config{
		MaxCycleFindings:    cfg.Engine.MaxCycleFindings,
		FanThreshold:        cfg.Engine.FanThreshold,
		ShellMinTx:          cfg.Engine.ShellMinTx,
		ShellMaxTx:          cfg.Engine.ShellMaxTx,
		VelocityPerHour:     cfg.Engine.VelocityPerHour,
		MerchantMinSenders:  cfg.Engine.MerchantMinSenders,
		PayrollMinReceivers: cfg.Engine.PayrollMinReceivers,
	}, logger)
	apiHandlers := server.NewAPIHandlers(logger, eng, sink, cfg.HTTP.MaxUploadBytes)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	return graph.NewNeo4jClient(ctx, opts)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
