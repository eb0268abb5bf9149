package config

import "time"

// EngineConfig is the root configuration for a market engine instance.
type EngineConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Server   ServerConfig   `yaml:"server"`
	Market   MarketConfig   `yaml:"market"`
	Accounts AccountsConfig `yaml:"accounts"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Client   ClientConfig   `yaml:"client"`
}

// InstanceConfig identifies this engine instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MarketConfig holds the catalog and price generation settings.
type MarketConfig struct {
	Retention    int            `yaml:"retention"`     // Records kept per product
	TickInterval time.Duration  `yaml:"tick_interval"` // Price generation cadence
	MaxStep      int            `yaml:"max_step"`      // Max price change per tick
	MinPrice     int            `yaml:"min_price"`     // Price floor
	SeedMin      int            `yaml:"seed_min"`      // Cold-start price range
	SeedMax      int            `yaml:"seed_max"`
	Catalog      []CatalogEntry `yaml:"catalog"`
}

// CatalogEntry is one product in the fixed startup catalog.
type CatalogEntry struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Stock int    `yaml:"stock"`
}

// AccountsConfig holds ledger settings.
type AccountsConfig struct {
	InitialBalance int `yaml:"initial_balance"`
}

// DatabaseConfig holds the optional PostgreSQL durability settings.
// When disabled the engine runs fully in-memory.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`

	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// RedisConfig holds the optional latest-quote cache settings.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ClientConfig holds sync client settings (cmd/watch).
type ClientConfig struct {
	BaseURL      string        `yaml:"base_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Window       time.Duration `yaml:"window"`
	MaxRetries   int           `yaml:"max_retries"`
	BufferSize   int           `yaml:"buffer_size"`
}
