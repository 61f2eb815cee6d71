package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/altsource-updater/internal/version"
)

// TestLatestRelease_Decodes verifies the request shape and payload decoding.
func TestLatestRelease_Decodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/owner/repo/releases/latest", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		assert.Equal(t, version.UserAgent(), r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`{
			"tag_name": "v1.2.3",
			"published_at": "2025-05-01T10:00:00Z",
			"body": "Changelog",
			"assets": [
				{"name": "App.ipa", "browser_download_url": "https://example.com/App.ipa", "size": 99}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	release, err := client.LatestRelease(context.Background(), "owner/repo")
	require.NoError(t, err)
	require.Equal(t, "v1.2.3", release.TagName)
	require.Equal(t, "2025-05-01T10:00:00Z", release.PublishedAt)
	require.Equal(t, "Changelog", release.Body)
	require.Len(t, release.Assets, 1)
	require.Equal(t, int64(99), release.Assets[0].Size)
}

// TestLatestRelease_Failures covers status, decoding and timeout failures.
func TestLatestRelease_Failures(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/missing/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/repos/owner/garbage/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	mux.HandleFunc("/repos/owner/slow/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(server.URL, WithCallTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.LatestRelease(context.Background(), "owner/missing")
	require.Error(t, err)
	require.True(t, IsStatusError(err))

	_, err = client.LatestRelease(context.Background(), "owner/garbage")
	require.Error(t, err)
	require.False(t, IsStatusError(err))

	_, err = client.LatestRelease(context.Background(), "owner/slow")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = client.LatestRelease(context.Background(), "")
	require.Error(t, err)
}

// TestNewClient validates the base URL and applies defaults.
func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := NewClient("not a url")
	require.Error(t, err)

	client, err := NewClient("", WithCallTimeout(0), WithHTTPClient(nil))
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, client.baseURL.String())
	require.Equal(t, "https://api.github.com", DefaultBaseURL)
	require.Equal(t, DefaultCallTimeout, client.callTimeout)
	require.Same(t, http.DefaultClient, client.http)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	_, ok := ctx.Deadline()
	require.False(t, ok)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}
