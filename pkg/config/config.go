// Package config loads typed configuration from environment variables.
//
// Structs use caarlos0/env tags:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//		DB   db.Config
//	}
//	cfg, err := config.Load[Config]()
package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
)

// ErrLoad wraps parse failures.
var ErrLoad = errors.New("config: failed to load configuration")

var cache sync.Map

// Load parses T from the process environment.
func Load[T any]() (T, error) {
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return cfg, errors.Join(ErrLoad, err)
	}
	return cfg, nil
}

// LoadFrom parses T from vars instead of the process environment.
func LoadFrom[T any](vars map[string]string) (T, error) {
	cfg, err := env.ParseAsWithOptions[T](env.Options{Environment: vars})
	if err != nil {
		return cfg, errors.Join(ErrLoad, err)
	}
	return cfg, nil
}

// MustLoad parses T once per type and panics on failure.
// Later calls return the first result.
func MustLoad[T any]() T {
	if v, ok := cache.Load(typeKey[T]{}); ok {
		return v.(T)
	}
	cfg, err := Load[T]()
	if err != nil {
		panic(err)
	}
	v, _ := cache.LoadOrStore(typeKey[T]{}, cfg)
	return v.(T)
}

type typeKey[T any] struct{}
