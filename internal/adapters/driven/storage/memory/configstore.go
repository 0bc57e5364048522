package memory

import (
	"sync"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg *domain.ClientConfig
}

// NewConfigStore creates a store holding cfg, or the defaults when cfg is nil.
func NewConfigStore(cfg *domain.ClientConfig) *ConfigStore {
	if cfg == nil {
		cfg = domain.DefaultClientConfig()
	}
	return &ConfigStore{cfg: cfg}
}

// Load returns a copy of the held configuration.
func (s *ConfigStore) Load() (*domain.ClientConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.cfg), nil
}

// Save replaces the held configuration.
func (s *ConfigStore) Save(cfg *domain.ClientConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = clone(cfg)
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

func clone(cfg *domain.ClientConfig) *domain.ClientConfig {
	cp := *cfg
	cp.OAuth.Scopes = append([]string(nil), cfg.OAuth.Scopes...)
	return &cp
}
