package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerPort     = 8080
	DefaultRetention      = 3600
	DefaultTickInterval   = 1 * time.Second
	DefaultMaxStep        = 5
	DefaultMinPrice       = 1
	DefaultSeedMin        = 50
	DefaultSeedMax        = 200
	DefaultInitialBalance = 1000
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 10
	DefaultMinConns       = 2
	DefaultBatchSize      = 500
	DefaultFlushInterval  = 1 * time.Second
	DefaultBufferSize     = 4096
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 1 * time.Hour
	DefaultBaseURL        = "http://localhost:8080"
	DefaultPollInterval   = 1 * time.Second
	DefaultWindow         = 1 * time.Hour
	DefaultMaxRetries     = 5
)

func (c *EngineConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}

	// Market defaults
	if c.Market.Retention == 0 {
		c.Market.Retention = DefaultRetention
	}
	if c.Market.TickInterval == 0 {
		c.Market.TickInterval = DefaultTickInterval
	}
	if c.Market.MaxStep == 0 {
		c.Market.MaxStep = DefaultMaxStep
	}
	if c.Market.MinPrice == 0 {
		c.Market.MinPrice = DefaultMinPrice
	}
	if c.Market.SeedMin == 0 {
		c.Market.SeedMin = DefaultSeedMin
	}
	if c.Market.SeedMax == 0 {
		c.Market.SeedMax = DefaultSeedMax
	}

	// Accounts defaults
	if c.Accounts.InitialBalance == 0 {
		c.Accounts.InitialBalance = DefaultInitialBalance
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}
	if c.Database.BatchSize == 0 {
		c.Database.BatchSize = DefaultBatchSize
	}
	if c.Database.FlushInterval == 0 {
		c.Database.FlushInterval = DefaultFlushInterval
	}
	if c.Database.BufferSize == 0 {
		c.Database.BufferSize = DefaultBufferSize
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = DefaultRedisTTL
	}

	// Client defaults
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultBaseURL
	}
	if c.Client.PollInterval == 0 {
		c.Client.PollInterval = DefaultPollInterval
	}
	if c.Client.Window == 0 {
		c.Client.Window = DefaultWindow
	}
	if c.Client.MaxRetries == 0 {
		c.Client.MaxRetries = DefaultMaxRetries
	}
	if c.Client.BufferSize == 0 {
		c.Client.BufferSize = DefaultRetention
	}
}
