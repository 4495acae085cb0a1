// Package resolve implements the update decision policy: given the tag an
// artifact is currently pinned to and the full list of tags available
// upstream, it picks the best tag within the same major version (the only one
// ever auto-applied) and the best tag overall (reported as an available major
// upgrade, never applied automatically).
package resolve

import (
	"errors"

	log "github.com/lucas-albers-lz4/vup/pkg/log"
	"github.com/lucas-albers-lz4/vup/pkg/version"
)

// ErrCurrentNotSemver is returned when the currently pinned tag carries no
// parseable version, leaving no baseline for comparison. Callers treat this
// as a warning and skip the artifact, not as a run-level failure.
var ErrCurrentNotSemver = errors.New("current tag is not a parseable version")

// MajorUpgrade describes an available cross-major update. It is informational
// only: major jumps are assumed to carry breaking changes requiring human
// review and are never auto-applied.
type MajorUpgrade struct {
	ID           string
	CurrentTag   string
	AvailableTag string
	CurrentMajor uint64
	NewMajor     uint64
}

// Resolution is the outcome of resolving one artifact against its upstream
// tag list.
type Resolution struct {
	// Current is the parsed form of the currently pinned tag.
	Current *version.Version
	// BestSameMajor is the highest acceptable tag sharing the current major
	// version, or "" when none exists. This is the only tag eligible for an
	// automatic edit.
	BestSameMajor string
	// BestOverall is the highest acceptable tag across all majors, or "".
	BestOverall string

	bestSame    *version.Version
	bestOverall *version.Version
}

// ShouldUpdate reports whether BestSameMajor is a strict upgrade over the
// current version. Equal-or-lower means "up to date", not a no-op edit.
func (r *Resolution) ShouldUpdate() bool {
	return r.bestSame != nil && r.bestSame.GreaterThan(r.Current)
}

// MajorAvailable returns a notice record when BestOverall crosses a major
// boundary above the current version, nil otherwise.
func (r *Resolution) MajorAvailable(id, currentTag string) *MajorUpgrade {
	if r.bestOverall == nil || r.bestOverall.Major() <= r.Current.Major() {
		return nil
	}
	return &MajorUpgrade{
		ID:           id,
		CurrentTag:   currentTag,
		AvailableTag: r.BestOverall,
		CurrentMajor: r.Current.Major(),
		NewMajor:     r.bestOverall.Major(),
	}
}

// Policy resolves artifacts against upstream tag lists. Exclude, when set, is
// the scoped ignore filter: tags it reports true for are stripped from the
// candidate pool before any other filtering (it filters candidate versions,
// never the artifact itself).
type Policy struct {
	Exclude func(tag string) bool
}

// Resolve picks the best same-major and best overall tags for currentTag out
// of tags. Returns ErrCurrentNotSemver when currentTag has no parseable
// version baseline.
func (p *Policy) Resolve(currentTag string, tags []string) (*Resolution, error) {
	current, ok := version.Parse(currentTag)
	if !ok {
		return nil, ErrCurrentNotSemver
	}

	currentVariant := version.ExtractVariant(currentTag)
	if currentVariant != "" {
		log.Debug("variant detected, restricting candidates", "variant", currentVariant, "tag", currentTag)
	}

	res := &Resolution{Current: current}
	res.collect(p, tags, current, currentVariant)

	// Zero candidates with the variant filter suggests variant detection was
	// wrong for this artifact; retry unfiltered rather than stalling updates
	// entirely. Never triggered when some candidates exist but fewer than
	// desired.
	if res.bestOverall == nil && currentVariant != "" {
		log.Debug("no candidates with variant, retrying without variant filter", "variant", currentVariant)
		res.collect(p, tags, current, "")
	}

	return res, nil
}

// collect partitions tags into acceptable candidates and records the two
// maxima by normalized ordering.
func (r *Resolution) collect(p *Policy, tags []string, current *version.Version, requiredVariant string) {
	for _, tag := range tags {
		if p.Exclude != nil && p.Exclude(tag) {
			continue
		}
		if !version.IsCandidate(tag, requiredVariant) {
			continue
		}
		v, ok := version.Parse(tag)
		if !ok {
			continue
		}
		if r.bestOverall == nil || v.GreaterThan(r.bestOverall) {
			r.bestOverall, r.BestOverall = v, tag
		}
		if v.Major() == current.Major() && (r.bestSame == nil || v.GreaterThan(r.bestSame)) {
			r.bestSame, r.BestSameMajor = v, tag
		}
	}
}
