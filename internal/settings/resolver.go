// Package settings resolves runtime configuration values with a layered
// lookup: persisted key-value store first, process environment second.
// Environment variables are the original source of truth, so a broken store
// degrades to env-only operation instead of taking the system down.
package settings

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Store is the persisted key-value side of the resolver. ErrNotFound-style
// absence is reported as ("", nil); errors mean the store itself failed.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
}

type Resolver struct {
	store  Store
	getenv func(string) string
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGetenv replaces the process environment lookup, mainly for tests.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

func NewResolver(store Store, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		getenv: os.Getenv,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the persisted value for key when present, else the environment
// value under the uppercased key name, else "". It never returns an error: a
// store failure is logged and treated as "not found".
func (r *Resolver) Get(ctx context.Context, key string) string {
	if r.store != nil {
		value, err := r.store.Get(ctx, key)
		if err != nil {
			r.logger.Warn("Settings store unavailable, falling back to environment",
				zap.String("key", key),
				zap.Error(err),
			)
		} else if value != "" {
			return value
		}
	}

	return r.getenv(strings.ToUpper(key))
}

// GetDefault resolves key and substitutes fallback when no layer has a value.
func (r *Resolver) GetDefault(ctx context.Context, key, fallback string) string {
	if value := r.Get(ctx, key); value != "" {
		return value
	}
	return fallback
}
