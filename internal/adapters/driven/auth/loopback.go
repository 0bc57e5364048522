package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/logger"
)

// Loopback callback ports tried in order.
const (
	LoopbackPortStart = 18080
	LoopbackPortEnd   = 18099
)

var (
	// ErrStateMismatch indicates the callback carried a foreign state.
	ErrStateMismatch = errors.New("oauth callback state mismatch")

	// ErrConsentDenied indicates the user declined the consent page.
	ErrConsentDenied = errors.New("oauth consent denied")
)

// FindAvailablePort finds an available loopback port in the given range.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}

type callbackResult struct {
	code string
	err  error
}

// LoopbackLogin runs the authorization code flow through a redirect to a
// local HTTP listener. open is given the consent page URL, typically to
// launch a browser. The resulting token is installed in a.
func LoopbackLogin(ctx context.Context, a *OAuthAuthorizer, open func(authURL string) error) error {
	port, err := FindAvailablePort(LoopbackPortStart, LoopbackPortEnd)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return err
	}

	state := rand.Text()
	verifier := oauth2.GenerateVerifier()
	a.config.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = ErrStateMismatch
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: %s", ErrConsentDenied, q.Get("error"))
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("OAuth callback server: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Debug("Waiting for OAuth callback on %s", a.config.RedirectURL)
	if err := open(a.AuthCodeURL(state, verifier)); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return domain.Cancelled(ctx.Err())
	case res := <-results:
		if res.err != nil {
			return res.err
		}
		return a.Exchange(ctx, res.code, verifier)
	}
}
