package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/oshokin/altsource-updater/internal/version"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"
	// DefaultCallTimeout is the default duration of one request.
	DefaultCallTimeout = 10 * time.Second

	// acceptHeader asks for the stable JSON representation.
	acceptHeader = "application/vnd.github+json"
	// apiVersion pins the REST API version.
	apiVersion = "2022-11-28"
)

var (
	// errBadHTTPStatus is returned for any non-2xx response.
	errBadHTTPStatus = errors.New("unexpected http status")
	// errRepositoryRequired is returned when the repository id is empty.
	errRepositoryRequired = errors.New("repository must be provided")
)

// Asset is one file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Release is the subset of the release payload the updater reads.
type Release struct {
	TagName     string  `json:"tag_name"`
	PublishedAt string  `json:"published_at"`
	Body        string  `json:"body"`
	Assets      []Asset `json:"assets"`
}

// Client talks to the GitHub REST API.
type Client struct {
	// baseURL is the API root, e.g. https://api.github.com.
	baseURL *url.URL
	// http performs the requests.
	http *http.Client

	// callTimeout is the default timeout for a single request.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for API calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	parsed, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	client := &Client{
		baseURL:     parsed,
		http:        http.DefaultClient,
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// LatestRelease fetches the newest published release of "owner/repo".
func (c *Client) LatestRelease(ctx context.Context, repository string) (*Release, error) {
	if repository == "" {
		return nil, errRepositoryRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	endpoint := c.baseURL.JoinPath("repos", repository, "releases", "latest").String()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get latest release: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s, %s: %w", endpoint, resp.Status, errBadHTTPStatus)
	}

	var release Release
	if err = json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	return &release, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// IsStatusError reports whether err came from a non-2xx response.
func IsStatusError(err error) bool {
	return errors.Is(err, errBadHTTPStatus)
}
