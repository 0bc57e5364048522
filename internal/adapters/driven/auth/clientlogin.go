package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
	"github.com/custodia-labs/gdata/internal/core/services"
	"github.com/custodia-labs/gdata/internal/logger"
)

// Ensure ClientLoginAuthorizer implements the Authorizer interface.
var _ driven.Authorizer = (*ClientLoginAuthorizer)(nil)

const (
	// DefaultClientLoginURI is the password login endpoint.
	DefaultClientLoginURI = "https://www.google.com/accounts/ClientLogin"

	// captchaBaseURI prefixes the relative CaptchaUrl of a challenge.
	captchaBaseURI = "http://www.google.com/accounts/"

	opAuthenticate = "authenticate"
)

// CaptchaHandler is asked to solve a CAPTCHA challenge. It receives the
// challenge image URI and blocks until it returns the answer. An empty
// answer abandons the login.
type CaptchaHandler func(ctx context.Context, imageURI string) string

// ClientLoginAuthorizer exchanges a username and password for one token per
// service, sent as "GoogleLogin auth=TOKEN".
type ClientLoginAuthorizer struct {
	transport driven.Transport
	loginURI  string
	clientID  string
	captcha   CaptchaHandler
	domains   []domain.AuthorizationDomain

	mu       sync.RWMutex
	username string
	password string
	tokens   map[domain.AuthorizationDomain]string

	group singleflight.Group
}

// ClientLoginOption configures a ClientLoginAuthorizer.
type ClientLoginOption func(*ClientLoginAuthorizer)

// WithLoginURI overrides the login endpoint.
func WithLoginURI(uri string) ClientLoginOption {
	return func(a *ClientLoginAuthorizer) { a.loginURI = uri }
}

// WithCaptchaHandler sets the handler for CAPTCHA challenges. Without one,
// a challenge fails the login with ErrCaptchaRequired.
func WithCaptchaHandler(h CaptchaHandler) ClientLoginOption {
	return func(a *ClientLoginAuthorizer) { a.captcha = h }
}

// NewClientLoginAuthorizer creates an authorizer for the given domains.
// clientID is sent as the login source.
func NewClientLoginAuthorizer(transport driven.Transport, clientID string, domains []domain.AuthorizationDomain,
	opts ...ClientLoginOption) *ClientLoginAuthorizer {
	a := &ClientLoginAuthorizer{
		transport: transport,
		loginURI:  DefaultClientLoginURI,
		clientID:  clientID,
		domains:   append([]domain.AuthorizationDomain(nil), domains...),
		tokens:    make(map[domain.AuthorizationDomain]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Username returns the username of the last successful login.
func (a *ClientLoginAuthorizer) Username() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.username
}

// Authenticate logs in to every domain's service. On failure all tokens
// are discarded.
func (a *ClientLoginAuthorizer) Authenticate(ctx context.Context, username, password string) error {
	tokens := make(map[domain.AuthorizationDomain]string, len(a.domains))
	byService := make(map[string]string)

	for _, d := range a.domains {
		token, ok := byService[d.ServiceName]
		if !ok {
			var err error
			token, err = a.login(ctx, d.ServiceName, username, password)
			if err != nil {
				a.reset()
				return err
			}
			byService[d.ServiceName] = token
		}
		tokens[d] = token
	}

	a.mu.Lock()
	a.username, a.password = username, password
	a.tokens = tokens
	a.mu.Unlock()

	logger.Debug("Logged in as %s for %d domain(s)", username, len(tokens))
	return nil
}

// AuthenticateAsync runs Authenticate in the background.
func (a *ClientLoginAuthorizer) AuthenticateAsync(ctx context.Context, username, password string) *services.Operation[struct{}] {
	return services.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Authenticate(ctx, username, password)
	})
}

func (a *ClientLoginAuthorizer) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.username, a.password = "", ""
	a.tokens = make(map[domain.AuthorizationDomain]string)
}

// IsAuthorizedFor reports whether a token for d is held.
func (a *ClientLoginAuthorizer) IsAuthorizedFor(d domain.AuthorizationDomain) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tokens[d] != ""
}

// Authorize sets the GoogleLogin Authorization header.
func (a *ClientLoginAuthorizer) Authorize(req *http.Request, d domain.AuthorizationDomain) error {
	a.mu.RLock()
	token := a.tokens[d]
	a.mu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "GoogleLogin auth="+token)
	}
	return nil
}

// Refresh logs in again to d's service with the stored credentials.
// Concurrent refreshes of one domain share a single login. A failed login
// drops d's token; a rejected login also forgets the stored credentials.
func (a *ClientLoginAuthorizer) Refresh(ctx context.Context, d domain.AuthorizationDomain) error {
	return refreshShared(ctx, &a.group, d.String(), func(ctx context.Context) error {
		a.mu.RLock()
		username, password := a.username, a.password
		a.mu.RUnlock()

		if username == "" {
			return &domain.ServiceError{
				Kind:    domain.ErrAuthenticationRequired,
				Op:      opAuthenticate,
				Message: "no stored credentials",
			}
		}

		token, err := a.login(ctx, d.ServiceName, username, password)
		if err != nil {
			var authErr *domain.AuthenticationError
			if errors.As(err, &authErr) {
				a.reset()
			} else {
				a.mu.Lock()
				delete(a.tokens, d)
				a.mu.Unlock()
			}
			return err
		}

		a.mu.Lock()
		a.tokens[d] = token
		a.mu.Unlock()
		return nil
	})
}

// AuthMethod returns AuthMethodClientLogin.
func (a *ClientLoginAuthorizer) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodClientLogin
}

// login performs one login, answering at most one CAPTCHA challenge.
func (a *ClientLoginAuthorizer) login(ctx context.Context, service, username, password string) (string, error) {
	fields, status, err := a.post(ctx, loginForm(service, a.clientID, username, password))
	if err != nil {
		return "", err
	}
	if status == http.StatusOK {
		return authToken(fields)
	}
	if fields["Error"] != "CaptchaRequired" {
		return "", loginError(fields)
	}

	imageURI, ok := fields["CaptchaUrl"]
	if !ok {
		return "", domain.ProtocolError(opAuthenticate, "CAPTCHA challenge without CaptchaUrl")
	}
	imageURI = captchaBaseURI + imageURI

	var answer string
	if a.captcha != nil {
		answer = a.captcha(ctx, imageURI)
	}
	if answer == "" {
		return "", &domain.AuthenticationError{Kind: domain.ErrCaptchaRequired, URI: imageURI}
	}

	captchaToken, ok := fields["CaptchaToken"]
	if !ok {
		return "", domain.ProtocolError(opAuthenticate, "CAPTCHA challenge without CaptchaToken")
	}

	form := loginForm(service, a.clientID, username, password)
	form.Set("logintoken", captchaToken)
	form.Set("logincaptcha", answer)

	fields, status, err = a.post(ctx, form)
	if err != nil {
		return "", err
	}
	if status == http.StatusOK {
		return authToken(fields)
	}
	return "", loginError(fields)
}

func loginForm(service, source, username, password string) url.Values {
	form := url.Values{}
	form.Set("accountType", "HOSTED_OR_GOOGLE")
	form.Set("Email", username)
	form.Set("Passwd", password)
	form.Set("service", service)
	form.Set("source", source)
	return form
}

// post sends the login form and parses the key=value response lines.
func (a *ClientLoginAuthorizer) post(ctx context.Context, form url.Values) (map[string]string, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, domain.Cancelled(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, domain.ProtocolError(opAuthenticate, "invalid login URI %q: %v", a.loginURI, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.transport.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, domain.Cancelled(ctxErr)
		}
		return nil, 0, &domain.ServiceError{Kind: domain.ErrUnavailable, Op: opAuthenticate, Message: "sending login", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, 0, domain.Cancelled(ctxErr)
	}
	if err != nil {
		return nil, 0, &domain.ServiceError{Kind: domain.ErrUnavailable, Op: opAuthenticate, Message: "reading login response", Err: err}
	}

	logger.Debug("ClientLogin response status %d", resp.StatusCode)
	return parseFields(body), resp.StatusCode, nil
}

func parseFields(body []byte) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if ok && key != "" {
			fields[key] = value
		}
	}
	return fields
}

func authToken(fields map[string]string) (string, error) {
	token := fields["Auth"]
	if token == "" {
		return "", domain.ProtocolError(opAuthenticate, "login response without Auth token")
	}
	return token, nil
}

// loginError maps the Error field of a failed login.
func loginError(fields map[string]string) error {
	code, ok := fields["Error"]
	if !ok || code == "" {
		return domain.ProtocolError(opAuthenticate, "login failure without Error code")
	}

	switch code {
	case "BadAuthentication":
		return &domain.AuthenticationError{Kind: domain.ErrBadAuthentication, Message: fields["Info"]}
	case "CaptchaRequired":
		return &domain.AuthenticationError{Kind: domain.ErrCaptchaRequired, URI: captchaBaseURI + fields["CaptchaUrl"]}
	case "Unknown":
		return domain.ProtocolError(opAuthenticate, "login failed with an unknown error")
	}

	kinds := map[string]error{
		"NotVerified":     domain.ErrNotVerified,
		"TermsNotAgreed":  domain.ErrTermsNotAgreed,
		"AccountDeleted":  domain.ErrAccountDeleted,
		"AccountDisabled": domain.ErrAccountDisabled,
		"ServiceDisabled": domain.ErrServiceDisabled,
	}
	kind, known := kinds[code]
	if !known && code != "ServiceUnavailable" {
		return domain.ProtocolError(opAuthenticate, "unrecognised login error %q", code)
	}

	uri, ok := fields["Url"]
	if !ok {
		return domain.ProtocolError(opAuthenticate, "login error %s without Url", code)
	}
	if !known {
		return &domain.ServiceError{
			Kind:    domain.ErrUnavailable,
			Op:      opAuthenticate,
			Message: fmt.Sprintf("service unavailable (see %s)", uri),
		}
	}
	return &domain.AuthenticationError{Kind: kind, URI: uri}
}
