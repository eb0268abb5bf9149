package tick

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
	"github.com/projectstockmarket/stockmarket/internal/series"
)

// Config holds generator settings shared by all products.
type Config struct {
	Interval time.Duration // Tick cadence (default: 1s)
	MaxStep  int           // Max absolute price change per tick (default: 5)
	MinPrice int           // Price floor (default: 1)
	SeedMin  int           // Cold-start seed range, inclusive (default: 50)
	SeedMax  int           // (default: 200)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
		MaxStep:  5,
		MinPrice: 1,
		SeedMin:  50,
		SeedMax:  200,
	}
}

// Generator produces the price path for a single product.
type Generator struct {
	cfg       Config
	productID int
	series    *series.Series
	events    chan<- model.TickEvent // optional, nil disables emission
	logger    *slog.Logger

	price int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	dropped int64
	mu      sync.Mutex
}

// New creates a generator for one product. events may be nil.
func New(cfg Config, productID int, s *series.Series, events chan<- model.TickEvent, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.MinPrice < 1 {
		cfg.MinPrice = 1
	}
	return &Generator{
		cfg:       cfg,
		productID: productID,
		series:    s,
		events:    events,
		logger:    logger,
	}
}

// Start seeds the price and begins the tick loop.
func (g *Generator) Start(ctx context.Context) error {
	g.ctx, g.cancel = context.WithCancel(ctx)

	g.seed()

	g.wg.Add(1)
	go g.run()

	g.logger.Debug("tick generator started",
		"product_id", g.productID,
		"interval", g.cfg.Interval,
		"start_price", g.price,
	)
	return nil
}

// Stop cancels the tick loop and waits for it to exit.
func (g *Generator) Stop(ctx context.Context) error {
	if g.cancel != nil {
		g.cancel()
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// seed picks the starting price: the last retained record when the series
// already has data (warm start), otherwise a bounded random value.
func (g *Generator) seed() {
	if last, ok := g.series.Latest(); ok {
		g.price = last.Price
		return
	}

	lo, hi := g.cfg.SeedMin, g.cfg.SeedMax
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo < g.cfg.MinPrice {
		lo = g.cfg.MinPrice
	}
	if hi < lo {
		hi = lo
	}
	g.price = lo + rand.IntN(hi-lo+1)
}

// run is the tick loop. It never terminates on a price computation; the
// only exit is context cancellation.
func (g *Generator) run() {
	defer g.wg.Done()

	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.ctx.Done():
			return
		case now := <-ticker.C:
			g.step(now.UTC())
		}
	}
}

// step advances the random walk by one tick and appends the new record.
func (g *Generator) step(now time.Time) {
	// Uniform step in [-MaxStep, +MaxStep].
	step := 0
	if g.cfg.MaxStep > 0 {
		step = rand.IntN(2*g.cfg.MaxStep+1) - g.cfg.MaxStep
	}

	g.price += step
	if g.price < g.cfg.MinPrice {
		g.price = g.cfg.MinPrice
	}

	rec := model.PriceRecord{Timestamp: now, Price: g.price}
	g.series.Append(rec)

	if g.events == nil {
		return
	}

	// Never block the tick loop on a slow consumer.
	select {
	case g.events <- model.TickEvent{ProductID: g.productID, Record: rec}:
	default:
		g.mu.Lock()
		g.dropped++
		n := g.dropped
		g.mu.Unlock()
		if n%100 == 1 {
			g.logger.Warn("tick events dropped",
				"product_id", g.productID,
				"dropped", n,
			)
		}
	}
}

// Dropped returns how many tick events were discarded because the event
// channel was full.
func (g *Generator) Dropped() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dropped
}
