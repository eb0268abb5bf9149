// server runs the market engine: tick generators, the HTTP API, the
// websocket stream and the optional PostgreSQL/Redis sidecars.
// Usage: go run ./cmd/server --config configs/engine.local.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/projectstockmarket/stockmarket/internal/account"
	"github.com/projectstockmarket/stockmarket/internal/auth"
	"github.com/projectstockmarket/stockmarket/internal/cache"
	"github.com/projectstockmarket/stockmarket/internal/config"
	"github.com/projectstockmarket/stockmarket/internal/httpapi"
	"github.com/projectstockmarket/stockmarket/internal/market"
	"github.com/projectstockmarket/stockmarket/internal/storage"
	"github.com/projectstockmarket/stockmarket/internal/stream"
	"github.com/projectstockmarket/stockmarket/internal/tick"
	"github.com/projectstockmarket/stockmarket/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/engine.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting market engine",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"products", len(cfg.Market.Catalog),
		"port", cfg.Server.Port,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Build the marketplace from the configured catalog
	catalog := make([]market.CatalogItem, 0, len(cfg.Market.Catalog))
	productIDs := make([]int, 0, len(cfg.Market.Catalog))
	for _, p := range cfg.Market.Catalog {
		catalog = append(catalog, market.CatalogItem{ID: p.ID, Name: p.Name, Stock: p.Stock})
		productIDs = append(productIDs, p.ID)
	}

	mp, err := market.New(market.Config{
		Retention: cfg.Market.Retention,
		Tick: tick.Config{
			Interval: cfg.Market.TickInterval,
			MaxStep:  cfg.Market.MaxStep,
			MinPrice: cfg.Market.MinPrice,
			SeedMin:  cfg.Market.SeedMin,
			SeedMax:  cfg.Market.SeedMax,
		},
	}, catalog, logger)
	if err != nil {
		logger.Error("failed to build marketplace", "error", err)
		os.Exit(1)
	}

	// Optional PostgreSQL durability: replay history, then persist ticks
	var writer *storage.Writer
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		pool, err := storage.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := storage.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}

		for _, id := range productIDs {
			records, err := storage.LoadRecent(ctx, pool, id, cfg.Market.Retention)
			if err != nil {
				logger.Error("failed to replay records", "product_id", id, "error", err)
				os.Exit(1)
			}
			if err := mp.Warm(id, records); err != nil {
				logger.Error("failed to warm series", "product_id", id, "error", err)
				os.Exit(1)
			}
			logger.Info("replayed price history", "product_id", id, "records", len(records))
		}

		writer = storage.NewWriter(storage.WriterConfig{
			BatchSize:     cfg.Database.BatchSize,
			FlushInterval: cfg.Database.FlushInterval,
			BufferSize:    cfg.Database.BufferSize,
		}, pool, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start record writer", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			writer.Stop(stopCtx)
		}()
	}

	// Optional Redis quote cache
	var quotes *cache.QuoteCache
	if cfg.Redis.Enabled {
		quotes, err = cache.New(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer quotes.Close()
		logger.Info("redis quote cache connected", "addr", cfg.Redis.Addr)
	}

	// Accounts and authentication
	authn := auth.New()
	ledger := account.NewLedger(mp, cfg.Accounts.InitialBalance)

	// Websocket stream
	hub := stream.NewHub(productIDs, logger)
	wsHandler := stream.NewHandler(hub, logger)

	// HTTP API
	srv := httpapi.NewServer(mp, ledger, authn,
		httpapi.WithStream(wsHandler),
		httpapi.WithLogger(logger),
	)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Routes(),
	}

	// Start price generation
	events := mp.SubscribeTicks()
	if err := mp.Start(ctx); err != nil {
		logger.Error("failed to start marketplace", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		mp.Stop(stopCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)

	// Fan tick events out to the stream, the writer and the cache
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				hub.Broadcast(ev)
				if writer != nil {
					writer.Enqueue(ev)
				}
				if quotes != nil {
					if err := quotes.PushTick(gctx, ev); err != nil {
						logger.Debug("quote cache push failed", "error", err)
					}
				}
			}
		}
	})

	g.Go(func() error {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	logger.Info("market engine running",
		"instance_id", cfg.Instance.ID,
		"url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
	)

	if err := g.Wait(); err != nil {
		logger.Error("market engine failed", "error", err)
		os.Exit(1)
	}

	logger.Info("market engine stopped")
}
