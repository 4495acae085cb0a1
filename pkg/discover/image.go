package discover

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// RegistryDockerHub is the registry class name used for Docker Hub images in
// the inventory, distinct from the docker.io domain the reference library
// normalizes to.
const RegistryDockerHub = "dockerhub"

// ImageRef is a container image reference split into the parts the registry
// clients need.
type ImageRef struct {
	// Registry is the registry class: "dockerhub", or a concrete host such
	// as "ghcr.io", "quay.io", "gcr.io", "localhost:5000".
	Registry string
	// Repository is the path within the registry, with the implicit
	// "library/" prefix applied for official Docker Hub images.
	Repository string
	// Tag is the pinned tag ("latest" when the reference carries none).
	Tag string
}

// ParseImage parses an image string such as "postgres:18.1",
// "cloudflare/cloudflared:2025.11.1", or "ghcr.io/owner/repo:v1.0" via the
// distribution reference library, then maps the normalized docker.io domain
// onto the "dockerhub" registry class.
func ParseImage(image string) (ImageRef, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return ImageRef{}, fmt.Errorf("invalid image reference %q: %w", image, err)
	}

	ref := ImageRef{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
		Tag:        "latest",
	}
	if tagged, ok := named.(reference.Tagged); ok {
		ref.Tag = tagged.Tag()
	}
	if ref.Registry == "docker.io" || ref.Registry == "index.docker.io" {
		ref.Registry = RegistryDockerHub
	}
	return ref, nil
}

// ImageID derives the inventory id for a repository: its last path segment.
func ImageID(repository string) string {
	if i := strings.LastIndex(repository, "/"); i >= 0 {
		return repository[i+1:]
	}
	return repository
}

// SplitNameTag splits "name:tag" (or "registry:port/name:tag") at the last
// colon belonging to the tag. Used by the update flow, which patches the full
// image string and only needs the raw tag for resolution.
func SplitNameTag(image string) (name, tag string) {
	i := strings.LastIndex(image, ":")
	if i < 0 {
		return image, ""
	}
	// A colon inside the final path segment separates a tag; one before a
	// slash belongs to a registry port.
	if strings.Contains(image[i:], "/") {
		return image, ""
	}
	return image[:i], image[i+1:]
}
