package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gdata/internal/core/domain"
)

// run executes the command tree with args and stdin, returning the output.
// Flag variables are reset so runs do not leak into each other.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configDir, verbose = "", false
	queryKind, queryText, queryMaxResults, queryPages, queryOutput = "entry", "", 0, 1, "text"
	loginUsername, loginService, loginNoBrowse = "", "", false
	versionShort = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeConfig saves cfg into a fresh configuration directory.
func writeConfig(t *testing.T, mutate func(cfg *domain.ClientConfig)) string {
	t.Helper()
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)

	cfg := domain.DefaultClientConfig()
	cfg.RateLimit.RequestsPerSecond = 0
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, store.Save(cfg))
	return dir
}
