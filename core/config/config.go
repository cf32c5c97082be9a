package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrInvalidConfigType is returned when the argument is not a non-nil
	// pointer to a struct.
	ErrInvalidConfigType = errors.New("config must be a non-nil pointer to a struct")
	// ErrParseFailed is returned when environment parsing fails.
	ErrParseFailed = errors.New("failed to parse environment variables")
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> struct value
)

// Load populates cfg from environment variables, loading .env files on
// first use. The result is cached per struct type: subsequent calls for
// the same type return the cached value without re-reading the
// environment.
func Load(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidConfigType
	}

	// Missing .env files are fine; real config may come from the process
	// environment.
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	t := v.Elem().Type()
	if cached, ok := cache.Load(t); ok {
		v.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParseFailed, err)
	}

	if cached, loaded := cache.LoadOrStore(t, v.Elem().Interface()); loaded {
		v.Elem().Set(reflect.ValueOf(cached))
	}
	return nil
}

// MustLoad is Load that panics on failure. Useful during startup where
// a missing required variable should stop the process.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
