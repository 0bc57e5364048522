package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gdata/internal/adapters/driven/auth"
	"github.com/custodia-labs/gdata/internal/core/domain"
)

// Flags for login.
var (
	loginUsername string
	loginService  string
	loginNoBrowse bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the feed services",
	Long: `Signs in and checks the credentials.

With --username the password is exchanged for ClientLogin tokens. The
password is read without echo and never stored. When the server asks for a
CAPTCHA the image URI is printed and the answer read from the terminal.

Without --username and with auth_method = "oauth" in the configuration, an
OAuth 2.0 consent page is opened through a local redirect listener and the
resulting token is saved next to the configuration.

Examples:
  gdata login --username jo@example.com --service cl
  gdata login`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "ClientLogin account name")
	loginCmd.Flags().StringVarP(&loginService, "service", "s", "", "service to sign in to (default all)")
	loginCmd.Flags().BoolVar(&loginNoBrowse, "no-browser", false, "print the consent URL instead of opening a browser")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := newPrompter(cmd)

	username := loginUsername
	if username == "" {
		username = a.cfg.ClientLogin.Username
	}
	if username != "" {
		_, err := clientLogin(ctx, a, p, username, loginService)
		return err
	}

	if a.cfg.AuthMethod != domain.AuthMethodOAuth {
		return errors.New("no username given and auth_method is not oauth")
	}
	return oauthLogin(ctx, cmd, a)
}

// clientLogin authenticates username for the named service, or for every
// known service, and reports the outcome.
func clientLogin(ctx context.Context, a *app, p *prompter, username, service string) (*auth.ClientLoginAuthorizer, error) {
	domains, err := a.domains(service)
	if err != nil {
		return nil, err
	}
	password, err := p.secret(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	authorizer, err := a.factory.Create(ctx, domain.AuthMethodClientLogin, a.cfg, domains,
		auth.WithCaptchaHandler(p.captcha))
	if err != nil {
		return nil, err
	}
	cl := authorizer.(*auth.ClientLoginAuthorizer)
	if err := cl.Authenticate(ctx, username, password); err != nil {
		return nil, describeAuthError(err)
	}

	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = d.ServiceName
	}
	p.cmd.Printf("Signed in as %s (%s)\n", username, strings.Join(names, ", "))
	return cl, nil
}

func oauthLogin(ctx context.Context, cmd *cobra.Command, a *app) error {
	authorizer, err := a.authorizer(ctx)
	if err != nil {
		return err
	}
	oa, ok := authorizer.(*auth.OAuthAuthorizer)
	if !ok {
		return fmt.Errorf("auth method %q does not support interactive login", authorizer.AuthMethod())
	}

	err = auth.LoopbackLogin(ctx, oa, func(authURL string) error {
		if !loginNoBrowse {
			if err := openBrowser(authURL); err == nil {
				cmd.Println("Opened the consent page in your browser.")
				return nil
			}
		}
		cmd.Println("Open this URL to grant access:")
		cmd.Println(authURL)
		return nil
	})
	if err != nil {
		return describeAuthError(err)
	}
	cmd.Println("Signed in. Token saved.")
	return nil
}

// describeAuthError adds the information page of account problems.
func describeAuthError(err error) error {
	var authErr *domain.AuthenticationError
	if errors.As(err, &authErr) && authErr.URI != "" {
		return fmt.Errorf("%w (see %s)", err, authErr.URI)
	}
	return err
}
