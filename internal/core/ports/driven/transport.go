package driven

import "net/http"

// Transport sends HTTP requests. Implementations must not follow redirects
// themselves (the service follows at most one) and must be safe for
// concurrent use, since one transport is shared by every call on a service.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}
