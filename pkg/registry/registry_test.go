package registry

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points every dialect at the given test server and uses an
// empty environment, with retry waits shrunk so retry tests run fast.
func newTestClient(server *httptest.Server) *Client {
	c := NewClient()
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = 5 * time.Millisecond
	c.DockerHubBaseURL = server.URL
	c.GHCRBaseURL = server.URL
	c.QuayBaseURL = server.URL
	c.GCRBaseURL = server.URL
	c.GenericScheme = "http"
	c.getenv = func(string) string { return "" }
	return c
}

func TestHelmChartVersions(t *testing.T) {
	index := `
apiVersion: v1
entries:
  traefik:
    - version: 37.1.2
    - version: 37.1.1
    - version: 36.0.0
  other:
    - version: 1.0.0
`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charts/index.yaml", r.URL.Path)
		fmt.Fprint(w, index)
	}))
	defer server.Close()

	client := newTestClient(server)
	versions, err := client.HelmChartVersions(context.Background(), server.URL+"/charts/", "traefik")
	require.NoError(t, err)
	assert.Equal(t, []string{"37.1.2", "37.1.1", "36.0.0"}, versions)

	// A chart missing from the index is empty, not an error.
	versions, err = client.HelmChartVersions(context.Background(), server.URL+"/charts", "absent")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestHelmChartVersionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.HelmChartVersions(context.Background(), server.URL, "traefik")
	assert.Error(t, err)
}

func TestDockerHubTagsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "2":
			fmt.Fprint(w, `{"results":[{"name":"16.1"}],"next":null}`)
		default:
			assert.Equal(t, "/v2/repositories/library/postgres/tags", r.URL.Path)
			fmt.Fprintf(w, `{"results":[{"name":"18.1"},{"name":"17.2"}],"next":"%s/v2/repositories/library/postgres/tags?page=2"}`, server.URL)
		}
	}))
	defer server.Close()

	client := newTestClient(server)
	tags, err := client.DockerHubTags(context.Background(), "library/postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{"18.1", "17.2", "16.1"}, tags)
}

func TestDockerHubTagsSendsBasicAuth(t *testing.T) {
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"results":[],"next":null}`)
	}))
	defer server.Close()

	client := newTestClient(server)
	client.getenv = func(key string) string {
		switch key {
		case "DOCKERHUB_USERNAME":
			return "alice"
		case "DOCKERHUB_TOKEN":
			return "s3cret"
		}
		return ""
	}

	_, err := client.DockerHubTags(context.Background(), "library/postgres")
	require.NoError(t, err)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	assert.Equal(t, expected, seenAuth)
	assert.True(t, client.DockerHubAuthenticated())
}

func TestGHCRTagsLinkPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/owner/app/tags/list", r.URL.Path)
		if r.URL.Query().Get("last") == "" {
			w.Header().Set("Link", `</v2/owner/app/tags/list?last=v1.1.0&n=100>; rel="next"`)
			fmt.Fprint(w, `{"tags":["v1.0.0","v1.1.0"]}`)
			return
		}
		fmt.Fprint(w, `{"tags":["v1.2.0"]}`)
	}))
	defer server.Close()

	client := newTestClient(server)
	tags, err := client.GHCRTags(context.Background(), "owner/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0", "v1.1.0", "v1.2.0"}, tags)
}

func TestGHCRTagsSendsEncodedToken(t *testing.T) {
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"tags":[]}`)
	}))
	defer server.Close()

	client := newTestClient(server)
	client.getenv = func(key string) string {
		if key == "GITHUB_TOKEN" {
			return "ghp_token"
		}
		return ""
	}

	_, err := client.GHCRTags(context.Background(), "owner/app")
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+base64.StdEncoding.EncodeToString([]byte("ghp_token")), seenAuth)
}

func TestQuayTagsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/api/v1/repository/coreos/etcd/tag/"))
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"tags":[{"name":"v3.6.0"}],"has_additional":true}`)
			return
		}
		fmt.Fprint(w, `{"tags":[{"name":"v3.5.0"}],"has_additional":false}`)
	}))
	defer server.Close()

	client := newTestClient(server)
	tags, err := client.QuayTags(context.Background(), "coreos/etcd")
	require.NoError(t, err)
	assert.Equal(t, []string{"v3.6.0", "v3.5.0"}, tags)
}

func TestGCRTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/distroless/static/tags/list", r.URL.Path)
		fmt.Fprint(w, `{"tags":["nonroot","latest","debug"]}`)
	}))
	defer server.Close()

	client := newTestClient(server)
	tags, err := client.GCRTags(context.Background(), "distroless/static")
	require.NoError(t, err)
	assert.Equal(t, []string{"nonroot", "latest", "debug"}, tags)
}

func TestTagsDispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v2/repositories/"):
			fmt.Fprint(w, `{"results":[{"name":"18.1"}],"next":null}`)
		default:
			fmt.Fprint(w, `{"tags":["1.0.0"]}`)
		}
	}))
	defer server.Close()

	client := newTestClient(server)

	tags, err := client.Tags(context.Background(), "dockerhub", "library/postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{"18.1"}, tags)

	// Unknown hosts go through the generic V2 endpoint.
	host := strings.TrimPrefix(server.URL, "http://")
	tags, err = client.Tags(context.Background(), host, "some/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0"}, tags)
}

func TestTagsUnauthorizedIsEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server)
	host := strings.TrimPrefix(server.URL, "http://")
	tags, err := client.Tags(context.Background(), host, "private/repo")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"tags":["v1.0.0"]}`)
	}))
	defer server.Close()

	client := newTestClient(server)
	tags, err := client.GCRTags(context.Background(), "proj/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0"}, tags)
	assert.Equal(t, int32(2), calls.Load())
}
