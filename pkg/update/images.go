package update

import (
	"context"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/lucas-albers-lz4/vup/pkg/discover"
	"github.com/lucas-albers-lz4/vup/pkg/inventory"
	"github.com/lucas-albers-lz4/vup/pkg/resolve"
)

// updateImage reconciles one container image pin. The current tag is read
// from the manifest at the image's recorded structural path, so manual edits
// between discovery and update are picked up.
func (r *Runner) updateImage(ctx context.Context, image inventory.DockerImage) Outcome {
	// Whole-artifact ignores short-circuit before any network fetch.
	if ignored, reason := r.cfg.Ignore.ImageIgnored(image.ID, image.Repository); ignored {
		return skipped(kindImage, image.ID, reason)
	}

	release, err := r.acquire(ctx, image.Registry)
	if err != nil {
		return failed(kindImage, image.ID, err)
	}
	tags, err := r.client.Tags(ctx, image.Registry, image.Repository)
	release()
	if err != nil {
		return failed(kindImage, image.ID, err)
	}
	if len(tags) == 0 {
		return skipped(kindImage, image.ID, "no tags available")
	}

	data, err := r.readFile(image.File)
	if err != nil {
		return failed(kindImage, image.ID, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return skipped(kindImage, image.ID, "manifest is not parseable YAML")
	}
	node, err := image.YAMLPath.Follow(doc)
	if err != nil {
		return skipped(kindImage, image.ID, "image path missing from manifest")
	}
	current, ok := node.(string)
	if !ok {
		return skipped(kindImage, image.ID, "image value is not a string")
	}

	name, tag := discover.SplitNameTag(current)
	if tag == "" {
		return skipped(kindImage, image.ID, "image reference carries no tag")
	}

	policy := resolve.Policy{Exclude: r.cfg.Ignore.ImageTagExcluder(image.ID, image.Repository)}
	res, err := policy.Resolve(tag, tags)
	if errors.Is(err, resolve.ErrCurrentNotSemver) {
		return skipped(kindImage, image.ID, "current tag is not a parseable version")
	}
	if err != nil {
		return failed(kindImage, image.ID, err)
	}

	major := res.MajorAvailable(image.ID, tag)
	if !res.ShouldUpdate() {
		return Outcome{Kind: kindImage, Name: image.ID, Status: StatusUpToDate, Major: major}
	}

	next := name + ":" + res.BestSameMajor
	ok, err = r.patchFile(image.File, "image", current, next)
	if err != nil {
		return failed(kindImage, image.ID, err)
	}
	if !ok {
		return skipped(kindImage, image.ID, "image string not found in manifest")
	}
	return Outcome{
		Kind:    kindImage,
		Name:    image.ID,
		Status:  StatusUpdated,
		Changes: []Change{{Name: image.ID, File: image.File, Old: current, New: next}},
		Major:   major,
	}
}
