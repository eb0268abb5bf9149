package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
	"github.com/projectstockmarket/stockmarket/internal/series"
	"github.com/projectstockmarket/stockmarket/internal/tick"
)

// EventBufferSize is the capacity of the tick event channel returned by
// SubscribeTicks. Generators drop events rather than block when consumers
// fall behind.
const EventBufferSize = 4096

// Config holds marketplace configuration.
type Config struct {
	Retention int         // Records retained per series (default: series.DefaultCapacity)
	Tick      tick.Config // Shared generator settings
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Retention: series.DefaultCapacity,
		Tick:      tick.DefaultConfig(),
	}
}

// CatalogItem describes one product at startup.
type CatalogItem struct {
	ID    int
	Name  string
	Stock int
}

// entry ties a product to its stock level and price history.
// stockMu guards stock only; the series carries its own lock.
type entry struct {
	product model.Product

	stockMu sync.Mutex
	stock   int

	series *series.Series
	gen    *tick.Generator
}

// MarketPlace is the product registry. The entries map is immutable after
// New, so lookups need no locking.
type MarketPlace struct {
	cfg    Config
	logger *slog.Logger

	order   []int // catalog order for deterministic listings
	entries map[int]*entry
	events  chan model.TickEvent
}

// New builds a marketplace from a fixed catalog.
func New(cfg Config, catalog []CatalogItem, logger *slog.Logger) (*MarketPlace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Retention < 1 {
		cfg.Retention = series.DefaultCapacity
	}

	m := &MarketPlace{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[int]*entry, len(catalog)),
		events:  make(chan model.TickEvent, EventBufferSize),
	}

	for _, item := range catalog {
		if _, dup := m.entries[item.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d in catalog", item.ID)
		}
		if item.Stock < 0 {
			return nil, fmt.Errorf("product %d: negative initial stock %d", item.ID, item.Stock)
		}

		s := series.New(cfg.Retention)
		e := &entry{
			product: model.Product{ID: item.ID, Name: item.Name},
			stock:   item.Stock,
			series:  s,
			gen:     tick.New(cfg.Tick, item.ID, s, m.events, logger),
		}
		m.entries[item.ID] = e
		m.order = append(m.order, item.ID)
	}

	return m, nil
}

// Start launches one tick generator per product.
func (m *MarketPlace) Start(ctx context.Context) error {
	for _, id := range m.order {
		if err := m.entries[id].gen.Start(ctx); err != nil {
			return fmt.Errorf("start generator for product %d: %w", id, err)
		}
	}

	m.logger.Info("marketplace started",
		"products", len(m.order),
		"retention", m.cfg.Retention,
		"tick_interval", m.cfg.Tick.Interval,
	)
	return nil
}

// Stop shuts down all generators, waiting up to ctx for each.
func (m *MarketPlace) Stop(ctx context.Context) error {
	var firstErr error
	for _, id := range m.order {
		if err := m.entries[id].gen.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		m.logger.Info("marketplace stopped")
	}
	return firstErr
}

// SubscribeTicks returns the stream of appended price records.
// There is a single shared channel; wire exactly one consumer loop and fan
// out from there.
func (m *MarketPlace) SubscribeTicks() <-chan model.TickEvent {
	return m.events
}

// GetProduct returns the product with the given id.
func (m *MarketPlace) GetProduct(id int) (model.Product, error) {
	e, ok := m.entries[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return e.product, nil
}

// ListProducts returns all products in catalog order.
func (m *MarketPlace) ListProducts() []model.Product {
	out := make([]model.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id].product)
	}
	return out
}

// Stock returns the current stock level of a product.
func (m *MarketPlace) Stock(id int) (int, error) {
	e, ok := m.entries[id]
	if !ok {
		return 0, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	e.stockMu.Lock()
	defer e.stockMu.Unlock()
	return e.stock, nil
}

// Inventory returns all stock levels in catalog order.
func (m *MarketPlace) Inventory() []model.MarketItem {
	out := make([]model.MarketItem, 0, len(m.order))
	for _, id := range m.order {
		e := m.entries[id]
		e.stockMu.Lock()
		q := e.stock
		e.stockMu.Unlock()
		out = append(out, model.MarketItem{ProductID: id, Quantity: q})
	}
	return out
}

// Buy atomically decrements a product's stock by amount.
// It fails with ErrOutOfStock when the stock does not cover the amount and
// leaves the level untouched. Prices are not affected.
func (m *MarketPlace) Buy(id, amount int) error {
	if amount < 1 {
		return fmt.Errorf("buy %d: %w", amount, ErrInvalidAmount)
	}
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}

	e.stockMu.Lock()
	defer e.stockMu.Unlock()

	if e.stock < amount {
		return fmt.Errorf("product %d: want %d, have %d: %w", id, amount, e.stock, ErrOutOfStock)
	}
	e.stock -= amount
	return nil
}

// Sell atomically increments a product's stock by amount. Stock has no upper
// bound; holdings checks belong to the account ledger, not here.
func (m *MarketPlace) Sell(id, amount int) error {
	if amount < 1 {
		return fmt.Errorf("sell %d: %w", amount, ErrInvalidAmount)
	}
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}

	e.stockMu.Lock()
	defer e.stockMu.Unlock()
	e.stock += amount
	return nil
}

// Records returns the product's price records within [from, to], ascending.
func (m *MarketPlace) Records(id int, from, to time.Time) ([]model.PriceRecord, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return e.series.Query(from, to)
}

// Latest returns the product's most recent price record.
// ok is false before the first tick.
func (m *MarketPlace) Latest(id int) (r model.PriceRecord, ok bool, err error) {
	e, found := m.entries[id]
	if !found {
		return model.PriceRecord{}, false, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	r, ok = e.series.Latest()
	return r, ok, nil
}

// Warm preloads a product's series with replayed records, oldest first.
// Call before Start so the generator seeds from the newest record.
func (m *MarketPlace) Warm(id int, records []model.PriceRecord) error {
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	for _, r := range records {
		e.series.Append(r)
	}
	return nil
}
