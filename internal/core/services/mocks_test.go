package services

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/custodia-labs/gdata/internal/core/domain"
)

// --- Mock implementations ---

// recordedRequest is a request as the mock transport saw it.
type recordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   string
}

// mockTransport implements driven.Transport and counts calls.
type mockTransport struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(req *http.Request, call int) (*http.Response, error)
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}

	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	call := len(m.requests)
	m.mu.Unlock()

	resp, err := m.respond(req, call)
	if resp != nil && resp.Request == nil {
		resp.Request = req
	}
	return resp, err
}

func (m *mockTransport) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockTransport) request(i int) recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}

// respondWith returns the same response to every call.
func respondWith(status int, body string, headers ...string) func(*http.Request, int) (*http.Response, error) {
	return func(*http.Request, int) (*http.Response, error) {
		return newResponse(status, body, headers...), nil
	}
}

func newResponse(status int, body string, headers ...string) *http.Response {
	h := http.Header{}
	for i := 0; i+1 < len(headers); i += 2 {
		h.Set(headers[i], headers[i+1])
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// mockAuthorizer implements driven.Authorizer with a fixed token.
type mockAuthorizer struct {
	token      string
	authorized map[domain.AuthorizationDomain]bool
}

func (m *mockAuthorizer) IsAuthorizedFor(d domain.AuthorizationDomain) bool {
	return m.authorized[d]
}

func (m *mockAuthorizer) Authorize(req *http.Request, d domain.AuthorizationDomain) error {
	if m.authorized[d] {
		req.Header.Set("Authorization", "GoogleLogin auth="+m.token)
	}
	return nil
}

func (m *mockAuthorizer) Refresh(context.Context, domain.AuthorizationDomain) error { return nil }

func (m *mockAuthorizer) AuthMethod() domain.AuthMethod { return domain.AuthMethodClientLogin }

var testDomain = domain.AuthorizationDomain{ServiceName: "cl", Scope: "https://example.com/calendar/feeds/"}

func newTestService(t interface{ Fatalf(string, ...any) }, transport *mockTransport, format Format) *Service {
	s, err := NewService(Config{
		Transport: transport,
		Authorizer: &mockAuthorizer{
			token:      "tok",
			authorized: map[domain.AuthorizationDomain]bool{testDomain: true},
		},
		Format:       format,
		APIVersion:   "2",
		ClientID:     "gdata-test",
		DeveloperKey: "dev",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}
