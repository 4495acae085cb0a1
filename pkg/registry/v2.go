package registry

import (
	"context"
	"fmt"
)

// v2TagList is the standard Docker Registry V2 tags/list response, shared by
// ghcr.io, gcr.io, and generic hosts.
type v2TagList struct {
	Tags []string `json:"tags"`
}

// GCRTags returns the tags of a gcr.io repository. gcr.io serves the full
// list in one response.
func (c *Client) GCRTags(ctx context.Context, repository string) ([]string, error) {
	url := fmt.Sprintf("%s/v2/%s/tags/list", c.GCRBaseURL, repository)
	var page v2TagList
	if _, err := c.getJSON(ctx, url, nil, &page); err != nil {
		return nil, err
	}
	return page.Tags, nil
}

// V2Tags queries an arbitrary registry host through the Docker Registry V2
// tags/list endpoint, anonymously.
func (c *Client) V2Tags(ctx context.Context, host, repository string) ([]string, error) {
	url := fmt.Sprintf("%s://%s/v2/%s/tags/list", c.GenericScheme, host, repository)
	var page v2TagList
	if _, err := c.getJSON(ctx, url, nil, &page); err != nil {
		return nil, err
	}
	return page.Tags, nil
}
