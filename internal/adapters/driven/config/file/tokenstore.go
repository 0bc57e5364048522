package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore persists OAuth tokens in tokens.toml, one table per key.
type TokenStore struct {
	mu       sync.Mutex
	filePath string
}

// NewTokenStore creates a token store in configDir, defaulting to ~/.gdata.
func NewTokenStore(configDir string) (*TokenStore, error) {
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

	return &TokenStore{filePath: filepath.Join(configDir, "tokens.toml")}, nil
}

// Load returns the token stored under key, or nil.
func (s *TokenStore) Load(_ context.Context, key string) (*domain.OAuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return nil, err
	}
	token, ok := tokens[key]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// Save stores token under key. A nil token removes the key.
func (s *TokenStore) Save(_ context.Context, key string, token *domain.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	if token == nil {
		delete(tokens, key)
	} else {
		tokens[key] = *token
	}

	data, err := toml.Marshal(tokens)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// read loads the file (caller must hold lock).
func (s *TokenStore) read() (map[string]domain.OAuthToken, error) {
	tokens := make(map[string]domain.OAuthToken)

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return tokens, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
