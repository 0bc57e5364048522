package file

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// Environment variables that override the file.
const (
	EnvClientID          = "GDATA_CLIENT_ID"
	EnvDeveloperKey      = "GDATA_DEVELOPER_KEY"
	EnvAPIVersion        = "GDATA_API_VERSION"
	EnvOAuthClientSecret = "GDATA_OAUTH_CLIENT_SECRET"
)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Configuration is stored in config.toml within the gdata config directory.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// DefaultDir returns ~/.gdata.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gdata"), nil
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.gdata/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{filePath: filepath.Join(configDir, "config.toml")}, nil
}

// Load reads the configuration. Keys missing from the file keep their
// defaults, a missing file yields the defaults, and environment variables
// override both.
func (s *ConfigStore) Load() (*domain.ClientConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := domain.DefaultClientConfig()

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *domain.ClientConfig) {
	if v, ok := os.LookupEnv(EnvClientID); ok {
		cfg.ClientID = v
	}
	if v, ok := os.LookupEnv(EnvDeveloperKey); ok {
		cfg.DeveloperKey = v
	}
	if v, ok := os.LookupEnv(EnvAPIVersion); ok {
		cfg.APIVersion = v
	}
	if v, ok := os.LookupEnv(EnvOAuthClientSecret); ok {
		cfg.OAuth.ClientSecret = v
	}
}

// Save writes the configuration to the TOML file.
func (s *ConfigStore) Save(cfg *domain.ClientConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
