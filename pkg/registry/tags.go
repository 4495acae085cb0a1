package registry

import (
	"context"
	"errors"

	"github.com/lucas-albers-lz4/vup/pkg/discover"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

// Tags dispatches to the dialect matching the registry class recorded in the
// inventory: "dockerhub", ghcr.io, quay.io, gcr.io, or the generic V2
// protocol for anything else. A 401 from a host without configured
// credentials is logged and reported as an empty tag list.
func (c *Client) Tags(ctx context.Context, registry, repository string) ([]string, error) {
	var (
		tags []string
		err  error
	)
	switch registry {
	case discover.RegistryDockerHub:
		tags, err = c.DockerHubTags(ctx, repository)
	case "ghcr.io":
		tags, err = c.GHCRTags(ctx, repository)
	case "quay.io":
		tags, err = c.QuayTags(ctx, repository)
	case "gcr.io":
		tags, err = c.GCRTags(ctx, repository)
	default:
		tags, err = c.V2Tags(ctx, registry, repository)
	}

	if errors.Is(err, ErrAuthRequired) {
		log.Warn("registry requires authentication, treating as no tags",
			"registry", registry, "repository", repository)
		return nil, nil
	}
	return tags, err
}
