package auth

import (
	"context"
	"fmt"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
)

// OAuthStoreKey is the TokenStore key of the configured OAuth client.
const OAuthStoreKey = "oauth"

// Factory creates Authorizers from the client configuration.
type Factory struct {
	transport  driven.Transport
	tokenStore driven.TokenStore
}

// NewFactory creates an authorizer factory. transport carries ClientLogin
// requests; tokenStore persists OAuth tokens.
func NewFactory(transport driven.Transport, tokenStore driven.TokenStore) *Factory {
	return &Factory{
		transport:  transport,
		tokenStore: tokenStore,
	}
}

// Create returns the authorizer for method, covering the given domains.
// OAuth authorizers are loaded with any persisted token. SSO needs a
// platform account and is built with NewSSOAuthorizer instead.
func (f *Factory) Create(ctx context.Context, method domain.AuthMethod, cfg *domain.ClientConfig,
	domains []domain.AuthorizationDomain, opts ...ClientLoginOption) (driven.Authorizer, error) {
	switch method {
	case domain.AuthMethodNone, "":
		return NewNullAuthorizer(), nil

	case domain.AuthMethodClientLogin:
		if cfg.ClientLogin.URI != "" {
			opts = append([]ClientLoginOption{WithLoginURI(cfg.ClientLogin.URI)}, opts...)
		}
		return NewClientLoginAuthorizer(f.transport, cfg.ClientID, domains, opts...), nil

	case domain.AuthMethodOAuth:
		if cfg.OAuth.ClientID == "" {
			return nil, fmt.Errorf("oauth authorizer requires oauth.client_id")
		}
		a := NewOAuthAuthorizer(cfg.OAuth, f.tokenStore, OAuthStoreKey, domains)
		if err := a.Load(ctx); err != nil {
			return nil, fmt.Errorf("load oauth token: %w", err)
		}
		return a, nil

	default:
		return nil, fmt.Errorf("unsupported auth method %q", method)
	}
}
