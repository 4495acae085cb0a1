// Package version provides normalization, ordering, and candidate filtering
// for the heterogeneous version-tag dialects found on container registries and
// Helm chart repositories.
//
// Registries mix plain semver (1.24.1), v-prefixed tags (v1.24.1), image patch
// conventions (1.24.1-p2), distro package revisions (1.24.1-2), and build
// variants (1.24.1-alpine3.19). Normalize collapses all of these into a single
// canonical dotted-decimal form with an optional ".postN" tie-breaker so that
// tags from different dialects order consistently.
package version

import "regexp"

// Compiled dialect patterns. Ordering matters: the suffix patterns must be
// tried before the digit/dot prefix fallback, otherwise "-p1" and "-2" would
// be truncated to the bare release and lose their ordering information.
var (
	// patternPatchSuffix matches image patch tags like v1.24.1-p2 (pgbouncer
	// and similar custom images).
	patternPatchSuffix = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)-p(\d+)$`)
	// patternPackageRev matches distro package revisions like v1.24.1-2.
	patternPackageRev = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)-(\d+)$`)
	// patternPlain matches a bare or v-prefixed release triplet.
	patternPlain = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)$`)
)

// Normalize converts a version tag into its canonical comparable form.
//
// Dialect rules, first match wins:
//   - v1.24.1-p2  -> 1.24.1.post2 (image patch suffix)
//   - v1.24.1-2   -> 1.24.1.post2 (package revision suffix)
//   - v1.24.1     -> 1.24.1
//   - 1.24.1-alpine3.19 -> 1.24.1 (fallback: leading digit/dot run after
//     stripping a "v" prefix)
//
// Tags with no recoverable numeric content (e.g. "latest") normalize to the
// empty string.
func Normalize(tag string) string {
	if m := patternPatchSuffix.FindStringSubmatch(tag); m != nil {
		return m[1] + ".post" + m[2]
	}
	if m := patternPackageRev.FindStringSubmatch(tag); m != nil {
		return m[1] + ".post" + m[2]
	}
	if m := patternPlain.FindStringSubmatch(tag); m != nil {
		return m[1]
	}
	if len(tag) > 0 && tag[0] == 'v' {
		tag = tag[1:]
	}
	return numericCore(tag)
}

// numericCore returns the longest prefix of tag consisting only of digits and
// dots. Shared with variant extraction, which needs the same scan to locate
// the text following the version core.
func numericCore(tag string) string {
	end := 0
	for ; end < len(tag); end++ {
		c := tag[end]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
	}
	return tag[:end]
}
