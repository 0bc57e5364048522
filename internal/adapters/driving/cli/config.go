package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gdata/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
	Long: `View and change the client configuration.

Settings are stored in config.toml under the configuration directory.
Environment variables GDATA_CLIENT_ID, GDATA_DEVELOPER_KEY,
GDATA_API_VERSION and GDATA_OAUTH_CLIENT_SECRET override the stored values
when loading, so "set" also saves any overrides in effect.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys use the file's section.key form, for example:
  gdata config set auth_method oauth
  gdata config set oauth.client_id 1234.apps.googleusercontent.com
  gdata config set rate_limit.requests_per_second 5`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	cfg := a.cfg

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()
	cmd.Printf("  API version: %s\n", cfg.APIVersion)
	cmd.Printf("  Client ID: %s\n", cfg.ClientID)
	cmd.Printf("  Developer key: %s\n", maskSecret(cfg.DeveloperKey))
	cmd.Printf("  Timeout: %s\n", cfg.Timeout())
	cmd.Printf("  Auth method: %s\n", cfg.AuthMethod)
	cmd.Println()

	cmd.Println("[Rate Limit]")
	if cfg.RateLimit.RequestsPerSecond > 0 {
		cmd.Printf("  Requests per second: %g\n", cfg.RateLimit.RequestsPerSecond)
		cmd.Printf("  Burst: %d\n", cfg.RateLimit.Burst)
	} else {
		cmd.Println("  Disabled")
	}
	cmd.Println()

	cmd.Println("[OAuth]")
	cmd.Printf("  Client ID: %s\n", valueOrUnset(cfg.OAuth.ClientID))
	cmd.Printf("  Client secret: %s\n", maskSecret(cfg.OAuth.ClientSecret))
	cmd.Printf("  Redirect URL: %s\n", valueOrUnset(cfg.OAuth.RedirectURL))
	cmd.Printf("  Scopes: %s\n", valueOrUnset(strings.Join(cfg.OAuth.Scopes, ", ")))
	cmd.Println()

	cmd.Println("[ClientLogin]")
	cmd.Printf("  Username: %s\n", valueOrUnset(cfg.ClientLogin.Username))
	cmd.Printf("  URI: %s\n", cfg.ClientLogin.URI)
	cmd.Println()

	if cfg.AuthMethod == domain.AuthMethodOAuth && cfg.OAuth.ClientID == "" {
		cmd.Println("Warning: auth_method is oauth but oauth.client_id is not set.")
		cmd.Println("Run 'gdata config set oauth.client_id <id>' to fix it.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := setConfigValue(a.cfg, args[0], args[1]); err != nil {
		return err
	}
	if err := a.store.Save(a.cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	cmd.Println(a.store.Path())
	return nil
}

// configSetters maps each settable key to its assignment.
var configSetters = map[string]func(cfg *domain.ClientConfig, v string) error{
	"api_version":   func(c *domain.ClientConfig, v string) error { c.APIVersion = v; return nil },
	"client_id":     func(c *domain.ClientConfig, v string) error { c.ClientID = v; return nil },
	"developer_key": func(c *domain.ClientConfig, v string) error { c.DeveloperKey = v; return nil },
	"timeout_seconds": func(c *domain.ClientConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("timeout_seconds must be a non-negative integer")
		}
		c.TimeoutSeconds = n
		return nil
	},
	"auth_method": func(c *domain.ClientConfig, v string) error {
		switch m := domain.AuthMethod(v); m {
		case domain.AuthMethodNone, domain.AuthMethodClientLogin, domain.AuthMethodOAuth:
			c.AuthMethod = m
			return nil
		default:
			return fmt.Errorf("auth_method must be none, clientlogin or oauth")
		}
	},
	"rate_limit.requests_per_second": func(c *domain.ClientConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be a non-negative number")
		}
		c.RateLimit.RequestsPerSecond = f
		return nil
	},
	"rate_limit.burst": func(c *domain.ClientConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("rate_limit.burst must be a positive integer")
		}
		c.RateLimit.Burst = n
		return nil
	},
	"oauth.client_id":     func(c *domain.ClientConfig, v string) error { c.OAuth.ClientID = v; return nil },
	"oauth.client_secret": func(c *domain.ClientConfig, v string) error { c.OAuth.ClientSecret = v; return nil },
	"oauth.auth_url":      func(c *domain.ClientConfig, v string) error { c.OAuth.AuthURL = v; return nil },
	"oauth.token_url":     func(c *domain.ClientConfig, v string) error { c.OAuth.TokenURL = v; return nil },
	"oauth.redirect_url":  func(c *domain.ClientConfig, v string) error { c.OAuth.RedirectURL = v; return nil },
	"oauth.scopes": func(c *domain.ClientConfig, v string) error {
		c.OAuth.Scopes = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.OAuth.Scopes = append(c.OAuth.Scopes, s)
			}
		}
		return nil
	},
	"clientlogin.username": func(c *domain.ClientConfig, v string) error { c.ClientLogin.Username = v; return nil },
	"clientlogin.uri":      func(c *domain.ClientConfig, v string) error { c.ClientLogin.URI = v; return nil },
}

func setConfigValue(cfg *domain.ClientConfig, key, value string) error {
	set, ok := configSetters[key]
	if !ok {
		keys := make([]string, 0, len(configSetters))
		for k := range configSetters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown key %q (known: %s)", key, strings.Join(keys, ", "))
	}
	return set(cfg, value)
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskSecret(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
