package auth

import (
	"context"
	"net/http"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
)

// Ensure NullAuthorizer implements the Authorizer interface.
var _ driven.Authorizer = (*NullAuthorizer)(nil)

// NullAuthorizer authorizes nothing. Services using it reach public feeds
// only.
type NullAuthorizer struct{}

// NewNullAuthorizer creates an authorizer for unauthenticated use.
func NewNullAuthorizer() *NullAuthorizer {
	return &NullAuthorizer{}
}

// IsAuthorizedFor always returns false.
func (NullAuthorizer) IsAuthorizedFor(domain.AuthorizationDomain) bool { return false }

// Authorize leaves the request untouched.
func (NullAuthorizer) Authorize(*http.Request, domain.AuthorizationDomain) error { return nil }

// Refresh always fails: there is nothing to refresh.
func (NullAuthorizer) Refresh(context.Context, domain.AuthorizationDomain) error {
	return &domain.ServiceError{Kind: domain.ErrAuthenticationRequired, Op: opRefresh, Message: "no credentials"}
}

// AuthMethod returns AuthMethodNone.
func (NullAuthorizer) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodNone
}
