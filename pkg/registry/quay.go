package registry

import (
	"context"
	"fmt"
)

// quayPage is one page of the quay.io tag API.
type quayPage struct {
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
	HasAdditional bool `json:"has_additional"`
}

// QuayTags returns every tag of a quay.io repository, paging while the API
// reports additional results.
func (c *Client) QuayTags(ctx context.Context, repository string) ([]string, error) {
	var tags []string
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/api/v1/repository/%s/tag/?limit=%d&page=%d&onlyActiveTags=true",
			c.QuayBaseURL, repository, tagPageSize, page)
		var result quayPage
		if _, err := c.getJSON(ctx, url, nil, &result); err != nil {
			return nil, err
		}
		for _, tag := range result.Tags {
			tags = append(tags, tag.Name)
		}
		if !result.HasAdditional {
			return tags, nil
		}
	}
}
