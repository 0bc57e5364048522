package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gdata/internal/core/domain"
)

var tasksDomain = domain.AuthorizationDomain{ServiceName: "tasks", Scope: "https://www.googleapis.com/auth/tasks"}

// tokenServer is a fake OAuth token endpoint.
type tokenServer struct {
	*httptest.Server
	hits  atomic.Int32
	mu    sync.Mutex
	forms []url.Values
	fail  bool
	delay time.Duration
}

func newTokenServer(t *testing.T) *tokenServer {
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		n := ts.hits.Add(1)
		ts.mu.Lock()
		ts.forms = append(ts.forms, r.PostForm)
		fail, delay := ts.fail, ts.delay
		ts.mu.Unlock()

		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been revoked."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-" + string(rune('0'+n)),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) form(i int) url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.forms[i]
}

func newTestOAuth(ts *tokenServer, store *memory.TokenStore) *OAuthAuthorizer {
	cfg := domain.OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		AuthURL:      ts.URL + "/auth",
		TokenURL:     ts.URL + "/token",
	}
	return NewOAuthAuthorizer(cfg, store, OAuthStoreKey, []domain.AuthorizationDomain{tasksDomain},
		WithTokenHTTPClient(ts.Client()))
}

func TestOAuth_Authorize(t *testing.T) {
	ts := newTokenServer(t)
	a := newTestOAuth(ts, memory.NewTokenStore())
	ctx := context.Background()

	assert.False(t, a.IsAuthorizedFor(tasksDomain))

	require.NoError(t, a.SetToken(ctx, &domain.OAuthToken{
		AccessToken:  "valid",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}))
	assert.True(t, a.IsAuthorizedFor(tasksDomain))
	assert.False(t, a.IsAuthorizedFor(calendarDomain))
	assert.Equal(t, domain.AuthMethodOAuth, a.AuthMethod())

	req, _ := http.NewRequest(http.MethodGet, "https://www.googleapis.com/tasks/v1/users/@me/lists", nil)
	require.NoError(t, a.Authorize(req, tasksDomain))
	assert.Equal(t, "Bearer valid", req.Header.Get("Authorization"))
	assert.Equal(t, int32(0), ts.hits.Load())
}

func TestOAuth_AuthorizeRefreshesNearExpiry(t *testing.T) {
	ts := newTokenServer(t)
	store := memory.NewTokenStore()
	a := newTestOAuth(ts, store)
	ctx := context.Background()

	require.NoError(t, a.SetToken(ctx, &domain.OAuthToken{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Minute),
	}))

	req, _ := http.NewRequest(http.MethodGet, "https://www.googleapis.com/tasks/v1/users/@me/lists", nil)
	require.NoError(t, a.Authorize(req, tasksDomain))

	assert.Equal(t, "Bearer access-1", req.Header.Get("Authorization"))
	assert.Equal(t, int32(1), ts.hits.Load())
	assert.Equal(t, "refresh_token", ts.form(0).Get("grant_type"))
	assert.Equal(t, "refresh", ts.form(0).Get("refresh_token"))
	assert.Equal(t, "client", ts.form(0).Get("client_id"))

	stored, err := store.Load(ctx, OAuthStoreKey)
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
	assert.Equal(t, "refresh", stored.RefreshToken, "refresh token is kept when not rotated")
}

func TestOAuth_ConcurrentRefreshSharesOneExchange(t *testing.T) {
	ts := newTokenServer(t)
	ts.delay = 50 * time.Millisecond
	a := newTestOAuth(ts, memory.NewTokenStore())
	require.NoError(t, a.SetToken(context.Background(), &domain.OAuthToken{AccessToken: "old", RefreshToken: "refresh"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Refresh(context.Background(), tasksDomain))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ts.hits.Load())
	assert.Equal(t, "access-1", a.Token().AccessToken)
}

func TestOAuth_CancelledCallerDoesNotFailSharedRefresh(t *testing.T) {
	ts := newTokenServer(t)
	ts.delay = 100 * time.Millisecond
	a := newTestOAuth(ts, memory.NewTokenStore())
	require.NoError(t, a.SetToken(context.Background(), &domain.OAuthToken{AccessToken: "old", RefreshToken: "refresh"}))

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- a.Refresh(ctx, tasksDomain) }()
	require.Eventually(t, func() bool { return ts.hits.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- a.Refresh(context.Background(), tasksDomain) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-first, domain.ErrCancelled)
	assert.NoError(t, <-second)
	assert.Equal(t, int32(1), ts.hits.Load())
	assert.Equal(t, "access-1", a.Token().AccessToken)
}

func TestOAuth_RefreshFailures(t *testing.T) {
	t.Run("no refresh token", func(t *testing.T) {
		ts := newTokenServer(t)
		a := newTestOAuth(ts, memory.NewTokenStore())
		require.NoError(t, a.SetToken(context.Background(), &domain.OAuthToken{AccessToken: "only"}))

		err := a.Refresh(context.Background(), tasksDomain)
		assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)
		assert.Equal(t, int32(0), ts.hits.Load())
	})

	t.Run("revoked", func(t *testing.T) {
		ts := newTokenServer(t)
		ts.fail = true
		a := newTestOAuth(ts, memory.NewTokenStore())
		require.NoError(t, a.SetToken(context.Background(), &domain.OAuthToken{AccessToken: "old", RefreshToken: "gone"}))

		err := a.Refresh(context.Background(), tasksDomain)
		assert.ErrorIs(t, err, domain.ErrBadAuthentication)
		assert.Contains(t, err.Error(), "invalid_grant")
		assert.Equal(t, "old", a.Token().AccessToken)
	})
}

func TestOAuth_Load(t *testing.T) {
	ts := newTokenServer(t)
	store := memory.NewTokenStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, OAuthStoreKey, &domain.OAuthToken{AccessToken: "persisted", TokenType: "Bearer"}))

	a := newTestOAuth(ts, store)
	require.NoError(t, a.Load(ctx))

	assert.True(t, a.IsAuthorizedFor(tasksDomain))
	assert.Equal(t, "persisted", a.Token().AccessToken)
}

func TestOAuth_ScopesDefaultToDomains(t *testing.T) {
	a := NewOAuthAuthorizer(domain.OAuthConfig{ClientID: "c", AuthURL: "https://accounts.example.com/auth"},
		memory.NewTokenStore(), OAuthStoreKey, []domain.AuthorizationDomain{tasksDomain, calendarDomain})

	// Verifier and challenge from RFC 7636 appendix B.
	authURL, err := url.Parse(a.AuthCodeURL("state-1", "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
	require.NoError(t, err)

	q := authURL.Query()
	assert.Equal(t, "https://www.googleapis.com/auth/tasks https://www.google.com/calendar/feeds/", q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", q.Get("code_challenge"))
}

func TestOAuth_Exchange(t *testing.T) {
	ts := newTokenServer(t)
	store := memory.NewTokenStore()
	a := newTestOAuth(ts, store)

	require.NoError(t, a.Exchange(context.Background(), "auth-code", "the-verifier"))

	form := ts.form(0)
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "auth-code", form.Get("code"))
	assert.Equal(t, "the-verifier", form.Get("code_verifier"))

	stored, err := store.Load(context.Background(), OAuthStoreKey)
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
	assert.Equal(t, "Bearer", stored.TokenType)
}
