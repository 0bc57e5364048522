package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
	"github.com/custodia-labs/gdata/internal/logger"
)

// Ensure OAuthAuthorizer implements the Authorizer interface.
var _ driven.Authorizer = (*OAuthAuthorizer)(nil)

// DefaultRefreshBuffer is how long before expiry a token is refreshed.
const DefaultRefreshBuffer = 5 * time.Minute

const opRefresh = "refresh"

// OAuthAuthorizer sends OAuth 2.0 bearer tokens. Tokens close to expiry
// are refreshed before use and every new token is saved to the store.
type OAuthAuthorizer struct {
	config        *oauth2.Config
	store         driven.TokenStore
	storeKey      string
	httpClient    *http.Client
	refreshBuffer time.Duration
	domains       map[domain.AuthorizationDomain]struct{}

	mu    sync.RWMutex
	token *oauth2.Token

	group singleflight.Group
}

// OAuthOption configures an OAuthAuthorizer.
type OAuthOption func(*OAuthAuthorizer)

// WithTokenHTTPClient sets the client used to reach the token endpoint.
func WithTokenHTTPClient(c *http.Client) OAuthOption {
	return func(a *OAuthAuthorizer) { a.httpClient = c }
}

// WithRefreshBuffer sets how long before expiry tokens are refreshed.
func WithRefreshBuffer(d time.Duration) OAuthOption {
	return func(a *OAuthAuthorizer) { a.refreshBuffer = d }
}

// NewOAuthAuthorizer creates an authorizer for the given domains. Tokens
// are persisted in store under storeKey. When the config names no scopes,
// the domains' scopes are requested.
func NewOAuthAuthorizer(cfg domain.OAuthConfig, store driven.TokenStore, storeKey string,
	domains []domain.AuthorizationDomain, opts ...OAuthOption) *OAuthAuthorizer {
	scopes := append([]string(nil), cfg.Scopes...)
	if len(scopes) == 0 {
		for _, d := range domains {
			scopes = append(scopes, d.Scope)
		}
	}

	a := &OAuthAuthorizer{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:         store,
		storeKey:      storeKey,
		refreshBuffer: DefaultRefreshBuffer,
		domains:       make(map[domain.AuthorizationDomain]struct{}, len(domains)),
	}
	for _, d := range domains {
		a.domains[d] = struct{}{}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load restores the persisted token, if any.
func (a *OAuthAuthorizer) Load(ctx context.Context) error {
	stored, err := a.store.Load(ctx, a.storeKey)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}

	a.mu.Lock()
	a.token = toOAuth2(stored)
	a.mu.Unlock()
	return nil
}

// SetToken installs and persists a token.
func (a *OAuthAuthorizer) SetToken(ctx context.Context, token *domain.OAuthToken) error {
	if err := a.store.Save(ctx, a.storeKey, token); err != nil {
		return err
	}

	a.mu.Lock()
	a.token = toOAuth2(token)
	a.mu.Unlock()
	return nil
}

// Token returns the current token, or nil.
func (a *OAuthAuthorizer) Token() *domain.OAuthToken {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == nil {
		return nil
	}
	return fromOAuth2(a.token)
}

// IsAuthorizedFor reports whether a token is held and d was granted.
func (a *OAuthAuthorizer) IsAuthorizedFor(d domain.AuthorizationDomain) bool {
	if _, ok := a.domains[d]; !ok {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token != nil && a.token.AccessToken != ""
}

// Authorize sets the bearer Authorization header, refreshing the token
// first when it is about to expire.
func (a *OAuthAuthorizer) Authorize(req *http.Request, d domain.AuthorizationDomain) error {
	if !a.IsAuthorizedFor(d) {
		return nil
	}

	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()

	if a.needsRefresh(token) {
		if err := a.Refresh(req.Context(), d); err != nil {
			return err
		}
		a.mu.RLock()
		token = a.token
		a.mu.RUnlock()
	}

	token.SetAuthHeader(req)
	return nil
}

func (a *OAuthAuthorizer) needsRefresh(token *oauth2.Token) bool {
	if token.RefreshToken == "" || token.Expiry.IsZero() {
		return false
	}
	return time.Until(token.Expiry) < a.refreshBuffer
}

// Refresh exchanges the refresh token for a new access token. All domains
// share one token, so concurrent refreshes share one exchange.
func (a *OAuthAuthorizer) Refresh(ctx context.Context, _ domain.AuthorizationDomain) error {
	return refreshShared(ctx, &a.group, "token", func(ctx context.Context) error {
		a.mu.RLock()
		current := a.token
		a.mu.RUnlock()

		if current == nil || current.RefreshToken == "" {
			return &domain.ServiceError{
				Kind:    domain.ErrAuthenticationRequired,
				Op:      opRefresh,
				Message: "no refresh token",
			}
		}

		// An expired copy forces the token source to go to the endpoint.
		stale := &oauth2.Token{RefreshToken: current.RefreshToken, Expiry: time.Unix(1, 0)}
		fresh, err := a.config.TokenSource(a.tokenContext(ctx), stale).Token()
		if err != nil {
			return tokenError(ctx, err)
		}
		if fresh.RefreshToken == "" {
			fresh.RefreshToken = current.RefreshToken
		}

		if err := a.store.Save(ctx, a.storeKey, fromOAuth2(fresh)); err != nil {
			return err
		}
		a.mu.Lock()
		a.token = fresh
		a.mu.Unlock()

		logger.Debug("Refreshed OAuth token, expires %s", fresh.Expiry.Format(time.RFC3339))
		return nil
	})
}

// AuthMethod returns AuthMethodOAuth.
func (a *OAuthAuthorizer) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodOAuth
}

// AuthCodeURL returns the consent page URL for an authorization code grant
// protected by PKCE.
func (a *OAuthAuthorizer) AuthCodeURL(state, codeVerifier string) string {
	return a.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(codeVerifier))
}

// Exchange trades an authorization code for a token and installs it.
func (a *OAuthAuthorizer) Exchange(ctx context.Context, code, codeVerifier string) error {
	token, err := a.config.Exchange(a.tokenContext(ctx), code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return tokenError(ctx, err)
	}
	return a.SetToken(ctx, fromOAuth2(token))
}

func (a *OAuthAuthorizer) tokenContext(ctx context.Context) context.Context {
	if a.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// tokenError maps a token endpoint failure.
func tokenError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Cancelled(ctxErr)
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		msg := rerr.ErrorCode
		if rerr.ErrorDescription != "" {
			msg += ": " + rerr.ErrorDescription
		}
		return &domain.AuthenticationError{Kind: domain.ErrBadAuthentication, Message: msg}
	}
	return &domain.ServiceError{Kind: domain.ErrUnavailable, Op: opRefresh, Message: "token endpoint", Err: err}
}

func toOAuth2(t *domain.OAuthToken) *oauth2.Token {
	if t == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

func fromOAuth2(t *oauth2.Token) *domain.OAuthToken {
	return &domain.OAuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.Type(),
		Expiry:       t.Expiry,
	}
}
