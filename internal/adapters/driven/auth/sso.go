package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
)

// Ensure SSOAuthorizer implements the Authorizer interface.
var _ driven.Authorizer = (*SSOAuthorizer)(nil)

// Account is a platform online account that hands out access tokens.
type Account interface {
	// AccessToken returns a current access token and its expiry, which is
	// zero when unknown.
	AccessToken(ctx context.Context) (string, time.Time, error)

	// ServiceEnabled reports whether the user enabled the named service
	// for this account.
	ServiceEnabled(serviceName string) bool
}

// SSOAuthorizer takes credentials from a platform Account. It is
// authorized for every domain whose service the account enables; until
// Refresh has fetched a token, requests go out without credentials and
// fail with ErrAuthenticationRequired.
type SSOAuthorizer struct {
	account Account
	domains map[domain.AuthorizationDomain]struct{}

	mu     sync.RWMutex
	token  string
	expiry time.Time

	group singleflight.Group
}

// NewSSOAuthorizer creates an authorizer for the candidate domains the
// account enables.
func NewSSOAuthorizer(account Account, candidates []domain.AuthorizationDomain) *SSOAuthorizer {
	a := &SSOAuthorizer{
		account: account,
		domains: make(map[domain.AuthorizationDomain]struct{}),
	}
	for _, d := range candidates {
		if account.ServiceEnabled(d.ServiceName) {
			a.domains[d] = struct{}{}
		}
	}
	return a
}

// IsAuthorizedFor reports whether the account enables d's service.
func (a *SSOAuthorizer) IsAuthorizedFor(d domain.AuthorizationDomain) bool {
	_, ok := a.domains[d]
	return ok
}

// Authorize sets the bearer Authorization header when a token is held.
func (a *SSOAuthorizer) Authorize(req *http.Request, d domain.AuthorizationDomain) error {
	if !a.IsAuthorizedFor(d) {
		return nil
	}

	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// Refresh fetches a new access token from the account.
func (a *SSOAuthorizer) Refresh(ctx context.Context, _ domain.AuthorizationDomain) error {
	return refreshShared(ctx, &a.group, "token", func(ctx context.Context) error {
		token, expiry, err := a.account.AccessToken(ctx)
		if err != nil {
			return &domain.AuthenticationError{Kind: domain.ErrBadAuthentication, Message: err.Error()}
		}

		a.mu.Lock()
		a.token, a.expiry = token, expiry
		a.mu.Unlock()
		return nil
	})
}

// Expiry returns the expiry of the held token.
func (a *SSOAuthorizer) Expiry() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.expiry
}

// AuthMethod returns AuthMethodSSO.
func (a *SSOAuthorizer) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodSSO
}
