package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.OAuthToken
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]domain.OAuthToken),
	}
}

// Save stores a copy of token under key.
func (s *TokenStore) Save(_ context.Context, key string, token *domain.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == nil {
		delete(s.tokens, key)
		return nil
	}
	s.tokens[key] = *token
	return nil
}

// Load returns a copy of the token stored under key, or nil.
func (s *TokenStore) Load(_ context.Context, key string) (*domain.OAuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[key]
	if !ok {
		return nil, nil
	}
	return &token, nil
}
