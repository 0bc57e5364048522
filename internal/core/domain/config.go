package domain

import "time"

// ClientConfig is the client's persisted configuration.
type ClientConfig struct {
	// APIVersion is sent in the GData-Version header.
	APIVersion string `toml:"api_version"`
	// ClientID identifies the application to the server.
	ClientID string `toml:"client_id"`
	// DeveloperKey is sent in the X-GData-Key header when set.
	DeveloperKey string `toml:"developer_key"`
	// TimeoutSeconds bounds each HTTP exchange. Zero disables the timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// AuthMethod selects the authorizer the CLI builds.
	AuthMethod AuthMethod `toml:"auth_method"`

	RateLimit   RateLimitConfig   `toml:"rate_limit"`
	OAuth       OAuthConfig       `toml:"oauth"`
	ClientLogin ClientLoginConfig `toml:"clientlogin"`
}

// RateLimitConfig throttles outgoing requests.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// OAuthConfig holds OAuth 2.0 client settings.
type OAuthConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	RedirectURL  string   `toml:"redirect_url"`
	Scopes       []string `toml:"scopes"`
}

// ClientLoginConfig holds password login settings. Passwords are never
// persisted.
type ClientLoginConfig struct {
	Username string `toml:"username"`
	// URI is the login endpoint.
	URI string `toml:"uri"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultClientConfig returns the configuration used when none is stored.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIVersion:     "2",
		ClientID:       "gdata-go",
		TimeoutSeconds: 30,
		AuthMethod:     AuthMethodNone,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             10,
		},
		OAuth: OAuthConfig{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		ClientLogin: ClientLoginConfig{
			URI: "https://www.google.com/accounts/ClientLogin",
		},
	}
}
