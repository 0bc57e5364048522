package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/adapters/driven/transport"
	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/services"
)

// --- Mock implementations ---

// mockAuthorizer holds a fixed token for the calendar domain.
type mockAuthorizer struct {
	authorized bool
}

func (m *mockAuthorizer) IsAuthorizedFor(d domain.AuthorizationDomain) bool {
	return m.authorized && d == AuthorizationDomain
}

func (m *mockAuthorizer) Authorize(req *http.Request, d domain.AuthorizationDomain) error {
	if m.IsAuthorizedFor(d) {
		req.Header.Set("Authorization", "GoogleLogin auth=cal-token")
	}
	return nil
}

func (m *mockAuthorizer) Refresh(context.Context, domain.AuthorizationDomain) error {
	return domain.ErrAuthenticationRequired
}

func (m *mockAuthorizer) AuthMethod() domain.AuthMethod { return domain.AuthMethodClientLogin }

func newTestService(t *testing.T, authorized bool, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewService(services.Config{
		Transport:  transport.New(5 * time.Second),
		Authorizer: &mockAuthorizer{authorized: authorized},
	}, WithBaseURI(srv.URL+"/calendar/feeds"))
	require.NoError(t, err)
	return svc, srv
}
