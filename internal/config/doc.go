// Package config loads and validates the engine's YAML configuration.
//
// Files may reference environment variables with ${VAR}; they are expanded
// before parsing. Optional sections (database, redis) are disabled unless
// explicitly enabled, keeping the engine fully in-memory by default.
package config
