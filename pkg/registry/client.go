// Package registry fetches available version lists for artifacts: Helm chart
// versions from repository index files, and container image tags from Docker
// Hub, ghcr.io, quay.io, gcr.io, or any Docker Registry V2 compatible host.
//
// All requests go through a shared retrying HTTP client with bounded
// timeouts. Rate-limit responses (429) and transient 5xx failures are retried
// with exponential backoff; exhausting retries fails only the artifact whose
// fetch was in flight, never the run.
package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

// Request tuning. Registries answer tag lists quickly; anything slower than
// this is treated as transient and retried.
const (
	requestTimeout = 10 * time.Second
	retryMax       = 3
	retryWaitMin   = 2 * time.Second
	retryWaitMax   = 8 * time.Second
)

// Client queries chart repositories and container registries. The base URL
// fields exist so tests can point each dialect at an httptest server; the
// zero values of the exported fields are filled in by NewClient.
type Client struct {
	http *retryablehttp.Client

	DockerHubBaseURL string
	GHCRBaseURL      string
	QuayBaseURL      string
	GCRBaseURL       string
	// GenericScheme is the scheme used for unknown registry hosts, https
	// outside of tests.
	GenericScheme string

	// getenv is swapped in tests to control credential lookup.
	getenv func(string) string
}

// NewClient builds a Client with production defaults.
func NewClient() *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.HTTPClient.Timeout = requestTimeout
	rc.Logger = retryLogger{}

	return &Client{
		http:             rc,
		DockerHubBaseURL: "https://registry.hub.docker.com",
		GHCRBaseURL:      "https://ghcr.io",
		QuayBaseURL:      "https://quay.io",
		GCRBaseURL:       "https://gcr.io",
		GenericScheme:    "https",
		getenv:           os.Getenv,
	}
}

// retryLogger adapts pkg/log to retryablehttp's LeveledLogger so retry and
// backoff events land in the structured log.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...any) { log.Error(msg, kv...) }
func (retryLogger) Warn(msg string, kv ...any)  { log.Warn(msg, kv...) }
func (retryLogger) Info(msg string, kv ...any)  { log.Debug(msg, kv...) }
func (retryLogger) Debug(msg string, kv ...any) { log.Debug(msg, kv...) }

// get issues one GET with optional headers and returns the response body.
// Non-2xx statuses are errors; 401 is reported distinctly so callers can
// surface "requires authentication" instead of a bare status code.
func (c *Client) get(ctx context.Context, url string, headers http.Header) ([]byte, http.Header, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Debug("response body close failed", "url", url, "error", cerr)
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, nil, fmt.Errorf("GET %s: %w", url, ErrAuthRequired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, resp.Header, nil
}

// getJSON fetches url and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, url string, headers http.Header, out any) (http.Header, error) {
	body, respHeaders, err := c.get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return respHeaders, nil
}

// dockerHubAuth returns the basic-auth header for Docker Hub when
// credentials are present in the environment. Authenticated requests get a
// higher rate limit.
func (c *Client) dockerHubAuth() http.Header {
	username := c.getenv("DOCKERHUB_USERNAME")
	token := c.getenv("DOCKERHUB_TOKEN")
	if token == "" {
		token = c.getenv("DOCKERHUB_PASSWORD")
	}
	if username == "" || token == "" {
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + token))
	return http.Header{"Authorization": []string{"Basic " + encoded}}
}

// DockerHubAuthenticated reports whether Docker Hub credentials are
// configured; the scheduler raises the Docker Hub concurrency cap when they
// are.
func (c *Client) DockerHubAuthenticated() bool {
	return c.dockerHubAuth() != nil
}

// ghcrAuth returns the bearer header for ghcr.io. The registry expects the
// GitHub token base64-encoded.
func (c *Client) ghcrAuth() http.Header {
	token := c.getenv("GITHUB_TOKEN")
	if token == "" {
		token = c.getenv("GH_TOKEN")
	}
	if token == "" {
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(token))
	return http.Header{"Authorization": []string{"Bearer " + encoded}}
}
