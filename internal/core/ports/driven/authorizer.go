package driven

import (
	"context"
	"net/http"

	"github.com/custodia-labs/gdata/internal/core/domain"
)

// Authorizer supplies credentials for outgoing requests, per authorization
// domain. Services consult it before every request to a protected feed.
//
// Implementations must be safe for concurrent use and must serialise
// Refresh: concurrent callers wait for the refresh in flight rather than
// starting their own.
type Authorizer interface {
	// IsAuthorizedFor reports whether credentials for d are held.
	IsAuthorizedFor(d domain.AuthorizationDomain) bool

	// Authorize adds the credentials for d to req, typically as an
	// Authorization header. It leaves req untouched when none are held.
	Authorize(req *http.Request, d domain.AuthorizationDomain) error

	// Refresh re-acquires the credentials for d.
	Refresh(ctx context.Context, d domain.AuthorizationDomain) error

	// AuthMethod returns how credentials are obtained.
	AuthMethod() domain.AuthMethod
}

// TokenStore persists OAuth tokens between runs.
type TokenStore interface {
	// Load returns the stored token, or nil when none is stored.
	Load(ctx context.Context, key string) (*domain.OAuthToken, error)

	// Save stores a token, replacing any previous one.
	Save(ctx context.Context, key string, token *domain.OAuthToken) error
}
