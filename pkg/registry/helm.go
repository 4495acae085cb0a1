package registry

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// helmIndex is the subset of a Helm repository index.yaml we read: each
// entry name maps to a list of released chart versions.
type helmIndex struct {
	Entries map[string][]struct {
		Version string `yaml:"version"`
	} `yaml:"entries"`
}

// HelmChartVersions fetches repoURL's index.yaml and returns every published
// version of the named chart, newest ordering not guaranteed. A chart absent
// from the index yields an empty list, not an error.
func (c *Client) HelmChartVersions(ctx context.Context, repoURL, chart string) ([]string, error) {
	url := strings.TrimSuffix(repoURL, "/") + "/index.yaml"
	body, _, err := c.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var index helmIndex
	if err := yaml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("decoding index from %s: %w", url, err)
	}

	releases := index.Entries[chart]
	versions := make([]string, 0, len(releases))
	for _, release := range releases {
		if release.Version != "" {
			versions = append(versions, release.Version)
		}
	}
	return versions, nil
}
