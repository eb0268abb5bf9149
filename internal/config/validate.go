package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *EngineConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if err := c.Market.validate(); err != nil {
		return err
	}

	if c.Accounts.InitialBalance < 0 {
		return errors.New("accounts.initial_balance must be >= 0")
	}

	if c.Database.Enabled {
		if err := c.Database.validate(); err != nil {
			return err
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}

	if c.Client.MaxRetries < 1 {
		return errors.New("client.max_retries must be >= 1")
	}

	return nil
}

func (m *MarketConfig) validate() error {
	if m.Retention < 1 {
		return errors.New("market.retention must be >= 1")
	}
	if m.TickInterval <= 0 {
		return errors.New("market.tick_interval must be positive")
	}
	if m.MaxStep < 0 {
		return errors.New("market.max_step must be >= 0")
	}
	if m.MinPrice < 1 {
		return errors.New("market.min_price must be >= 1")
	}
	if m.SeedMax < m.SeedMin {
		return fmt.Errorf("market.seed_max (%d) must be >= market.seed_min (%d)", m.SeedMax, m.SeedMin)
	}
	if len(m.Catalog) == 0 {
		return errors.New("market.catalog must list at least one product")
	}

	seen := make(map[int]struct{}, len(m.Catalog))
	for _, p := range m.Catalog {
		if p.Name == "" {
			return fmt.Errorf("market.catalog: product %d has no name", p.ID)
		}
		if p.Stock < 0 {
			return fmt.Errorf("market.catalog: product %d has negative stock", p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("market.catalog: duplicate product id %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return nil
}

func (db *DatabaseConfig) validate() error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.Name == "" {
		return errors.New("database.name is required")
	}
	if db.User == "" {
		return errors.New("database.user is required")
	}
	if db.MaxConns < 1 {
		return errors.New("database.max_conns must be >= 1")
	}
	if db.MinConns < 0 {
		return errors.New("database.min_conns must be >= 0")
	}
	if db.BatchSize < 1 {
		return errors.New("database.batch_size must be >= 1")
	}
	if db.BufferSize < 1 {
		return errors.New("database.buffer_size must be >= 1")
	}
	return nil
}
