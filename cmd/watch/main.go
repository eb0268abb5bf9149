// watch polls a market engine over HTTP and prints price updates.
// Usage: go run ./cmd/watch --url http://localhost:8080 --interval 1s
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/api"
	"github.com/projectstockmarket/stockmarket/internal/feed"
	"github.com/projectstockmarket/stockmarket/internal/retry"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "engine base URL")
	products := flag.String("products", "", "comma-separated product ids (default: all)")
	interval := flag.Duration("interval", time.Second, "poll interval")
	window := flag.Duration("window", time.Hour, "history window for the first poll")
	maxRetries := flag.Int("max-retries", retry.DefaultMaxAttempts, "attempts per poll before giving up")
	verbose := flag.Bool("verbose", false, "log each poll")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	apiClient := api.NewClient(*baseURL, api.WithLogger(logger))

	ids, names, err := resolveProducts(ctx, apiClient, *products)
	if err != nil {
		logger.Error("failed to resolve products", "error", err)
		os.Exit(1)
	}
	logger.Info("watching products", "count", len(ids), "url", *baseURL)

	feedClient := feed.New(feed.Config{
		Window:       *window,
		PollInterval: *interval,
		Retry: retry.Policy{
			MaxAttempts: *maxRetries,
			Retryable:   api.IsTransient,
		},
	}, apiClient, logger)

	if err := feedClient.Start(ctx, ids); err != nil {
		logger.Error("failed to start feed", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		feedClient.Stop(stopCtx)
	}()

	printLoop(ctx, feedClient, ids, names, *interval)
}

// resolveProducts parses the --products flag, falling back to the full
// catalog when it is empty.
func resolveProducts(ctx context.Context, client *api.Client, raw string) ([]int, map[int]string, error) {
	names := make(map[int]string)

	if raw == "" {
		catalog, err := client.GetProducts(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch catalog: %w", err)
		}
		ids := make([]int, 0, len(catalog))
		for _, p := range catalog {
			ids = append(ids, p.ProductID)
			names[p.ProductID] = p.ProductName
		}
		return ids, names, nil
	}

	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid product id %q", part)
		}
		ids = append(ids, id)

		product, err := client.GetProduct(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch product %d: %w", id, err)
		}
		names[id] = product.ProductName
	}
	return ids, names, nil
}

// printLoop prints the newest price for each product whenever it
// changes, until the context is cancelled.
func printLoop(ctx context.Context, feedClient *feed.Client, ids []int, names map[int]string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastPrinted := make(map[int]time.Time)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range ids {
				records := feedClient.Records(id)
				if len(records) == 0 {
					continue
				}
				newest := records[len(records)-1]
				if !newest.Timestamp.After(lastPrinted[id]) {
					continue
				}
				lastPrinted[id] = newest.Timestamp
				fmt.Printf("%s  %-20s %6d\n",
					newest.Timestamp.Format(time.RFC3339),
					names[id],
					newest.Price,
				)
			}
		}
	}
}
