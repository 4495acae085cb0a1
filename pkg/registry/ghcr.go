package registry

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
)

// linkNextPattern extracts the rel="next" URL from a V2 Link header, e.g.
// </v2/owner/repo/tags/list?last=v1.2.3&n=100>; rel="next".
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// GHCRTags returns every tag of a ghcr.io repository, following Link-header
// pagination. Anonymous access works for public packages; a GitHub token
// (GITHUB_TOKEN or GH_TOKEN) is used when present.
func (c *Client) GHCRTags(ctx context.Context, repository string) ([]string, error) {
	url := fmt.Sprintf("%s/v2/%s/tags/list?n=%d", c.GHCRBaseURL, repository, tagPageSize)
	auth := c.ghcrAuth()

	var tags []string
	for url != "" {
		var page v2TagList
		headers, err := c.getJSON(ctx, url, auth, &page)
		if err != nil {
			return nil, err
		}
		tags = append(tags, page.Tags...)
		url = nextLink(c.GHCRBaseURL, headers)
	}
	return tags, nil
}

// nextLink resolves the rel="next" target from a Link header against the
// registry base URL. Registries return the target path-absolute.
func nextLink(baseURL string, headers http.Header) string {
	link := headers.Get("Link")
	if link == "" {
		return ""
	}
	m := linkNextPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	target := m[1]
	if len(target) > 0 && target[0] == '/' {
		return baseURL + target
	}
	return target
}
