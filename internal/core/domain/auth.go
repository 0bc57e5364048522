package domain

import "time"

// OAuthToken represents stored OAuth credentials.
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token" toml:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty" toml:"refresh_token"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type" toml:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty" toml:"expiry"`
}

// IsExpired returns true if the token has expired.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// ExpiresWithin reports whether the token expires inside the given window.
// Tokens without an expiry never do.
func (t *OAuthToken) ExpiresWithin(d time.Duration) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(d).After(t.Expiry)
}

// AuthMethod identifies how an authorizer obtains credentials.
type AuthMethod string

const (
	// AuthMethodNone authorizes nothing; only public feeds are reachable.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodClientLogin exchanges a username and password for a token.
	AuthMethodClientLogin AuthMethod = "clientlogin"
	// AuthMethodOAuth uses OAuth 2.0 bearer tokens.
	AuthMethodOAuth AuthMethod = "oauth"
	// AuthMethodSSO delegates to a platform account.
	AuthMethodSSO AuthMethod = "sso"
)
