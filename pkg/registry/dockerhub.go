package registry

import (
	"context"
	"fmt"
)

// tagPageSize is the page size requested from paginating tag APIs.
const tagPageSize = 100

// dockerHubPage is one page of the Docker Hub tags API.
type dockerHubPage struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
	Next string `json:"next"`
}

// DockerHubTags returns every tag of a Docker Hub repository, following the
// API's next links until exhausted. repository must carry its namespace
// ("library/postgres", "cloudflare/cloudflared").
func (c *Client) DockerHubTags(ctx context.Context, repository string) ([]string, error) {
	url := fmt.Sprintf("%s/v2/repositories/%s/tags?page_size=%d", c.DockerHubBaseURL, repository, tagPageSize)
	auth := c.dockerHubAuth()

	var tags []string
	for url != "" {
		var page dockerHubPage
		if _, err := c.getJSON(ctx, url, auth, &page); err != nil {
			return nil, err
		}
		for _, result := range page.Results {
			tags = append(tags, result.Name)
		}
		url = page.Next
	}
	return tags, nil
}
