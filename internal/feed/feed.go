package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/api"
	"github.com/projectstockmarket/stockmarket/internal/model"
	"github.com/projectstockmarket/stockmarket/internal/retry"
	"github.com/projectstockmarket/stockmarket/internal/series"
)

// ErrPollInFlight is returned when a poll for a product is requested while
// another one is still outstanding. The new request is dropped so the cursor
// never advances out of order.
var ErrPollInFlight = errors.New("poll already in flight")

// RecordSource is the engine query contract the client consumes.
// *api.Client satisfies it.
type RecordSource interface {
	GetRecords(ctx context.Context, id int, from, to time.Time) ([]model.PriceRecord, error)
}

// Config holds sync client settings.
type Config struct {
	Window       time.Duration // Cold-start backfill window (default: 1h)
	BufferSize   int           // Local buffer capacity (default: series.DefaultCapacity)
	PollInterval time.Duration // Run loop cadence (default: 1s)
	Retry        retry.Policy  // Transient-failure policy
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Window:       time.Hour,
		BufferSize:   series.DefaultCapacity,
		PollInterval: time.Second,
		Retry: retry.Policy{
			MaxAttempts: retry.DefaultMaxAttempts,
			Retryable:   api.IsTransient,
		},
	}
}

// cursor is the per-product sync state.
type cursor struct {
	inFlight atomic.Bool

	mu       sync.Mutex
	lastSeen time.Time // zero until the first successful poll
	buf      *series.Series
}

// Client polls the engine for new records product by product.
type Client struct {
	cfg    Config
	source RecordSource
	logger *slog.Logger

	mu      sync.Mutex
	cursors map[int]*cursor

	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a sync client over the given record source.
func New(cfg Config, source RecordSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = series.DefaultCapacity
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Client{
		cfg:     cfg,
		source:  source,
		logger:  logger,
		cursors: make(map[int]*cursor),
		now:     time.Now,
	}
}

// cursorFor returns the product's cursor, creating it on first use.
func (c *Client) cursorFor(id int) *cursor {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.cursors[id]
	if !ok {
		cur = &cursor{buf: series.New(c.cfg.BufferSize)}
		c.cursors[id] = cur
	}
	return cur
}

// Poll fetches records newer than the cursor and merges them into the local
// buffer. It returns how many new records arrived. A poll racing another
// poll for the same product is dropped with ErrPollInFlight.
func (c *Client) Poll(ctx context.Context, id int) (int, error) {
	cur := c.cursorFor(id)

	if !cur.inFlight.CompareAndSwap(false, true) {
		return 0, fmt.Errorf("product %d: %w", id, ErrPollInFlight)
	}
	defer cur.inFlight.Store(false)

	now := c.now().UTC()

	cur.mu.Lock()
	lastSeen := cur.lastSeen
	cur.mu.Unlock()

	cold := lastSeen.IsZero()
	from := lastSeen
	if cold {
		from = now.Add(-c.cfg.Window)
	}

	var records []model.PriceRecord
	err := c.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		records, callErr = c.source.GetRecords(ctx, id, from, now)
		return callErr
	})
	if err != nil {
		return 0, fmt.Errorf("poll product %d: %w", id, err)
	}

	cur.mu.Lock()
	defer cur.mu.Unlock()

	appended := 0
	for _, r := range records {
		// The inclusive lower bound re-delivers the boundary record.
		if !cold && !r.Timestamp.After(cur.lastSeen) {
			continue
		}
		cur.buf.Append(r)
		cur.lastSeen = r.Timestamp
		appended++
	}

	// Remote had nothing in the window: remember where the backfill ended
	// so the next poll stays incremental.
	if cold && cur.lastSeen.IsZero() {
		cur.lastSeen = from
	}

	return appended, nil
}

// Records returns a copy of the product's local buffer, oldest first.
func (c *Client) Records(id int) []model.PriceRecord {
	return c.cursorFor(id).buf.Snapshot()
}

// LastSeen returns the cursor position for a product. ok is false before
// the first successful poll.
func (c *Client) LastSeen(id int) (t time.Time, ok bool) {
	cur := c.cursorFor(id)
	cur.mu.Lock()
	defer cur.mu.Unlock()
	return cur.lastSeen, !cur.lastSeen.IsZero()
}

// Start launches one fixed-interval polling loop per product.
func (c *Client) Start(ctx context.Context, ids []int) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	for _, id := range ids {
		c.wg.Add(1)
		go c.pollLoop(id)
	}

	c.logger.Info("feed client started",
		"products", len(ids),
		"interval", c.cfg.PollInterval,
	)
	return nil
}

// Stop cancels all polling loops and waits for them to exit.
func (c *Client) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("feed client stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollLoop polls one product until shutdown.
func (c *Client) pollLoop(id int) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	// Backfill immediately on start.
	c.pollOnce(id)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.pollOnce(id)
		}
	}
}

func (c *Client) pollOnce(id int) {
	n, err := c.Poll(c.ctx, id)
	switch {
	case errors.Is(err, ErrPollInFlight):
		// Previous poll still running; this one is intentionally dropped.
	case errors.Is(err, context.Canceled):
	case err != nil:
		c.logger.Warn("poll failed", "product_id", id, "err", err)
	case n > 0:
		c.logger.Debug("poll merged records", "product_id", id, "new", n)
	}
}
