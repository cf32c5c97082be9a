// Package config provides type-safe environment variable loading with
// per-type caching. Each configuration type is loaded once and cached
// for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct
// fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/relaykit/core/config"
//
//	type RelayConfig struct {
//		ConnectionTTL time.Duration `env:"RELAY_CONNECTION_TTL" envDefault:"1m"`
//		UserTTL       time.Duration `env:"RELAY_USER_TTL" envDefault:"24h"`
//		SweepInterval time.Duration `env:"RELAY_SWEEP_INTERVAL" envDefault:"10s"`
//	}
//
//	func main() {
//		var cfg RelayConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime;
// a second Load for the same struct type returns the cached value.
// Different types are cached independently.
package config
