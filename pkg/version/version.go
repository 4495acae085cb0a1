package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a linearly ordered value derived from a normalized tag.
//
// The leading release triplet is held as a semver.Version so ordering of the
// common case is delegated to the semver library. Normalization can emit more
// than three release components (e.g. "2025.11.1.2" from a calendar-versioned
// tag with a numeric suffix); the extra components and the ".postN"
// tie-breaker are compared after the triplet.
type Version struct {
	core    *semver.Version
	release []uint64
	post    uint64
	hasPost bool
}

// Parse normalizes a tag and parses the result into a Version. The boolean is
// false when the tag carries no parseable numeric content; such tags are
// simply excluded from candidate sets, never treated as errors.
func Parse(tag string) (*Version, bool) {
	norm := Normalize(tag)
	if norm == "" {
		return nil, false
	}

	base := norm
	var post uint64
	var hasPost bool
	if i := strings.Index(norm, ".post"); i >= 0 {
		n, err := strconv.ParseUint(norm[i+len(".post"):], 10, 64)
		if err != nil {
			return nil, false
		}
		base, post, hasPost = norm[:i], n, true
	}

	parts := strings.Split(base, ".")
	release := make([]uint64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			// Covers empty components from malformed cores like "1..2" or
			// trailing dots; consistent with normalization fallback output
			// that fails strict parsing.
			return nil, false
		}
		release = append(release, n)
	}

	// Pad the triplet with zeros so "18.1" orders as 18.1.0.
	triplet := [3]uint64{}
	copy(triplet[:], release)
	core, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d", triplet[0], triplet[1], triplet[2]))
	if err != nil {
		return nil, false
	}

	return &Version{core: core, release: release, post: post, hasPost: hasPost}, true
}

// Major returns the major component of the release tuple.
func (v *Version) Major() uint64 {
	return v.core.Major()
}

// Post returns the post-release tie-breaker (0 when absent).
func (v *Version) Post() uint64 {
	return v.post
}

// Compare returns -1, 0, or 1 ordering v against o. The release triplet is
// compared first via the semver library, then any components beyond the
// triplet (missing components count as zero), then the post-release number.
func (v *Version) Compare(o *Version) int {
	if c := v.core.Compare(o.core); c != 0 {
		return c
	}
	longest := len(v.release)
	if len(o.release) > longest {
		longest = len(o.release)
	}
	for i := 3; i < longest; i++ {
		a, b := uint64(0), uint64(0)
		if i < len(v.release) {
			a = v.release[i]
		}
		if i < len(o.release) {
			b = o.release[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	switch {
	case v.post < o.post:
		return -1
	case v.post > o.post:
		return 1
	}
	// A post-release orders after the bare release it extends ("1.2.3.post0"
	// is newer than "1.2.3").
	switch {
	case v.hasPost && !o.hasPost:
		return 1
	case !v.hasPost && o.hasPost:
		return -1
	}
	return 0
}

// LessThan reports whether v orders strictly before o.
func (v *Version) LessThan(o *Version) bool {
	return v.Compare(o) < 0
}

// GreaterThan reports whether v orders strictly after o.
func (v *Version) GreaterThan(o *Version) bool {
	return v.Compare(o) > 0
}

// String returns the canonical normalized form.
func (v *Version) String() string {
	parts := make([]string, len(v.release))
	for i, n := range v.release {
		parts[i] = strconv.FormatUint(n, 10)
	}
	s := strings.Join(parts, ".")
	if v.hasPost {
		s += ".post" + strconv.FormatUint(v.post, 10)
	}
	return s
}
