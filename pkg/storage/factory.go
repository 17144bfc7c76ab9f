package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// BackendConstructor is a function that creates a backend instance
type BackendConstructor func(ctx context.Context, cfg Config) (Backend, error)

var (
	registryMu      sync.RWMutex
	backendRegistry = make(map[string]BackendConstructor)
)

// RegisterBackend registers a backend constructor for a type name
func RegisterBackend(backendType string, constructor BackendConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backendRegistry[backendType] = constructor
}

// RegisteredTypes returns the registered backend type names, sorted
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(backendRegistry))
	for t := range backendRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Factory creates storage backends from configuration
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates a backend from config
func (f *Factory) Create(ctx context.Context, cfg Config) (Backend, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("destination %s is disabled", cfg.Name)
	}

	registryMu.RLock()
	constructor, ok := backendRegistry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown destination type %q (known: %v): %w", cfg.Type, RegisteredTypes(), ErrInvalidConfig)
	}

	return constructor(ctx, cfg)
}

// CreateAll creates all enabled backends; on failure the ones already created are closed
func (f *Factory) CreateAll(ctx context.Context, configs []Config) ([]Backend, error) {
	backends := make([]Backend, 0, len(configs))

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		backend, err := f.Create(ctx, cfg)
		if err != nil {
			CloseAll(backends)
			return nil, fmt.Errorf("failed to create destination %s: %w", cfg.Name, err)
		}

		backends = append(backends, backend)
	}

	return backends, nil
}

// CloseAll closes every backend, ignoring errors
func CloseAll(backends []Backend) {
	for _, b := range backends {
		_ = b.Close()
	}
}
