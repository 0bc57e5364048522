package driven

import "github.com/custodia-labs/gdata/internal/core/domain"

// ConfigStore provides access to client configuration.
// Implementations handle persistence (e.g., TOML files) and defaults.
type ConfigStore interface {
	// Load reads configuration from storage. Missing storage yields the
	// defaults.
	Load() (*domain.ClientConfig, error)

	// Save persists the configuration.
	Save(cfg *domain.ClientConfig) error

	// Path returns the configuration location, or "" for non-file stores.
	Path() string
}
