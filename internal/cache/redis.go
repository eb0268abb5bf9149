package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/projectstockmarket/stockmarket/internal/config"
	"github.com/projectstockmarket/stockmarket/internal/model"
)

// ErrNoQuote is returned when a product has no cached quote.
var ErrNoQuote = errors.New("no cached quote")

// trimInterval is how often old ticks are removed from the sorted sets.
const trimInterval = 10 * time.Second

// QuoteCache stores last quotes and time-sorted recent ticks in Redis.
type QuoteCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// member is the JSON shape stored per tick.
type member struct {
	Price int   `json:"price"`
	Ts    int64 `json:"ts"` // unix nano timestamp
}

func lastKey(productID int) string  { return fmt.Sprintf("last:%d", productID) }
func ticksKey(productID int) string { return fmt.Sprintf("ticks:%d", productID) }

// New connects to Redis, verifies it with a ping and starts the
// background trim loop. The loop stops when ctx is cancelled.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*QuoteCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	c := &QuoteCache{
		rdb:    rdb,
		ttl:    cfg.TTL,
		logger: logger,
	}

	go c.trimLoop(ctx)

	return c, nil
}

// Close shuts down the Redis client.
func (c *QuoteCache) Close() error {
	return c.rdb.Close()
}

// PushTick stores a tick as both the product's latest quote and a
// member of its time-sorted set.
func (c *QuoteCache) PushTick(ctx context.Context, ev model.TickEvent) error {
	m := member{Price: ev.Record.Price, Ts: ev.Record.Timestamp.UnixNano()}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal tick: %w", err)
	}

	if err := c.rdb.Set(ctx, lastKey(ev.ProductID), b, c.ttl*2).Err(); err != nil {
		return fmt.Errorf("set last quote for product %d: %w", ev.ProductID, err)
	}

	score := float64(ev.Record.Timestamp.UnixNano()) / 1e6
	z := redis.Z{Score: score, Member: string(b)}
	if err := c.rdb.ZAdd(ctx, ticksKey(ev.ProductID), z).Err(); err != nil {
		return fmt.Errorf("add tick for product %d: %w", ev.ProductID, err)
	}

	return nil
}

// Latest returns the product's most recent cached quote.
func (c *QuoteCache) Latest(ctx context.Context, productID int) (model.PriceRecord, error) {
	b, err := c.rdb.Get(ctx, lastKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.PriceRecord{}, fmt.Errorf("product %d: %w", productID, ErrNoQuote)
	}
	if err != nil {
		return model.PriceRecord{}, fmt.Errorf("get last quote for product %d: %w", productID, err)
	}

	var m member
	if err := json.Unmarshal(b, &m); err != nil {
		return model.PriceRecord{}, fmt.Errorf("decode last quote for product %d: %w", productID, err)
	}
	return m.toRecord(), nil
}

// Window returns the product's cached ticks from the last d, ascending.
func (c *QuoteCache) Window(ctx context.Context, productID int, d time.Duration) ([]model.PriceRecord, error) {
	now := time.Now()
	members, err := c.rdb.ZRangeByScore(ctx, ticksKey(productID), &redis.ZRangeBy{
		Min: fmt.Sprintf("%f", float64(now.Add(-d).UnixNano())/1e6),
		Max: fmt.Sprintf("%f", float64(now.UnixNano())/1e6),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read tick window for product %d: %w", productID, err)
	}

	records := make([]model.PriceRecord, 0, len(members))
	for _, raw := range members {
		var m member
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			continue
		}
		records = append(records, m.toRecord())
	}
	return records, nil
}

// TrimOld removes ticks older than the cutoff from every product set.
func (c *QuoteCache) TrimOld(ctx context.Context, olderThan time.Time) error {
	cut := fmt.Sprintf("%f", float64(olderThan.UnixNano())/1e6)
	iter := c.rdb.Scan(ctx, 0, "ticks:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.ZRemRangeByScore(ctx, iter.Val(), "-inf", cut).Err(); err != nil {
			c.logger.Warn("Failed to trim tick set", "key", iter.Val(), "error", err)
		}
	}
	return iter.Err()
}

// Health checks the Redis connection.
func (c *QuoteCache) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *QuoteCache) trimLoop(ctx context.Context) {
	ticker := time.NewTicker(trimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.TrimOld(ctx, time.Now().Add(-c.ttl)); err != nil {
				c.logger.Warn("Tick set trim failed", "error", err)
			}
		}
	}
}

func (m member) toRecord() model.PriceRecord {
	return model.PriceRecord{
		Timestamp: time.Unix(0, m.Ts).UTC(),
		Price:     m.Price,
	}
}
