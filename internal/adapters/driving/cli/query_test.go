package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedFeedServer serves two feed pages linked by a next link.
func pagedFeedServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/atom+xml")
		if r.URL.Query().Get("page") == "2" {
			_, _ = io.WriteString(w, `<feed xmlns="http://www.w3.org/2005/Atom">
  <entry><id>e2</id><title>Second</title></entry>
</feed>`)
			return
		}
		if got := r.URL.Query().Get("q"); got != "tennis" {
			t.Errorf("q = %q, want tennis", got)
		}
		_, _ = fmt.Fprintf(w, `<feed xmlns="http://www.w3.org/2005/Atom">
  <link rel="next" href="%s/feed?page=2"/>
  <entry><id>e1</id><title>First</title></entry>
</feed>`, srv.URL)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQueryCmd_FollowsPages(t *testing.T) {
	var requests atomic.Int32
	srv := pagedFeedServer(t, &requests)
	dir := writeConfig(t, nil)

	out, err := run(t, "", "query", srv.URL+"/feed", "--config", dir, "--q", "tennis", "--pages", "3")

	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	assert.Contains(t, out, "[1] First (e1)")
	assert.Contains(t, out, "[2] Second (e2)")
}

func TestQueryCmd_SinglePageByDefault(t *testing.T) {
	var requests atomic.Int32
	srv := pagedFeedServer(t, &requests)
	dir := writeConfig(t, nil)

	out, err := run(t, "", "query", srv.URL+"/feed", "--config", dir, "--q", "tennis")

	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
	assert.NotContains(t, out, "Second")
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	var requests atomic.Int32
	srv := pagedFeedServer(t, &requests)
	dir := writeConfig(t, nil)

	out, err := run(t, "", "query", srv.URL+"/feed", "--config", dir, "--q", "tennis", "-o", "json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "e1"`)
	assert.Contains(t, out, `"title": "First"`)
}

func TestQueryCmd_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<feed xmlns="http://www.w3.org/2005/Atom"/>`)
	}))
	defer srv.Close()

	out, err := run(t, "", "query", srv.URL, "--config", writeConfig(t, nil))

	require.NoError(t, err)
	assert.Contains(t, out, "No entries.")
}

func TestQueryCmd_AuthRequiredWithoutCredentials(t *testing.T) {
	var requests atomic.Int32
	srv := pagedFeedServer(t, &requests)

	_, err := run(t, "", "query", srv.URL+"/feed", "--config", writeConfig(t, nil), "--kind", "event")

	require.Error(t, err)
	assert.Equal(t, int32(0), requests.Load())
}

func TestQueryCmd_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown kind", args: []string{"--kind", "photo"}},
		{name: "unknown output", args: []string{"-o", "yaml"}},
		{name: "zero pages", args: []string{"--pages", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"query", "http://127.0.0.1:1/feed", "--config", t.TempDir()}, tt.args...)
			_, err := run(t, "", args...)
			assert.Error(t, err)
		})
	}
}

func TestKindFor(t *testing.T) {
	for _, name := range []string{"", "entry", "event", "calendar", "contact", "task", "tasklist"} {
		k, err := kindFor(name)
		require.NoError(t, err, name)
		assert.NotNil(t, k.factory, name)
	}

	k, err := kindFor("entry")
	require.NoError(t, err)
	assert.Nil(t, k.domain)
}
