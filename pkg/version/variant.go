package version

import (
	"regexp"
	"strings"
)

// variantPattern captures the leading alphabetic run of whatever follows the
// version core, e.g. "alpine" out of "alpine3.19" or "slim" out of
// "slim-bookworm".
var variantPattern = regexp.MustCompile(`^([a-zA-Z]+)`)

// buildTagPattern matches explicit build tags of the shape X.Y.Z-b or X.Y.Z-bN
// which are always acceptable update candidates regardless of variant.
var buildTagPattern = regexp.MustCompile(`^\d+\.\d+\.\d+-b(\d+)?$`)

// ExtractVariant returns the lowercased build-variant label of a tag
// ("alpine", "slim", "debian", ...) or the empty string when the tag carries
// no variant.
//
//	18.1-alpine3.22 -> "alpine"
//	1.2.3-slim-bookworm -> "slim"
//	1.2.3 -> ""
func ExtractVariant(tag string) string {
	// Same scan as Normalize's fallback: a "v" prefix is spelling, not part
	// of the version core, so v1.24.1-alpine carries the same variant as
	// 1.24.1-alpine.
	if len(tag) > 0 && tag[0] == 'v' {
		tag = tag[1:]
	}
	core := numericCore(tag)
	if core == "" {
		return ""
	}

	remainder := tag[len(core):]
	if remainder == "" {
		return ""
	}
	remainder = strings.TrimLeft(remainder, "-")
	if remainder == "" {
		return ""
	}

	if m := variantPattern.FindStringSubmatch(remainder); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// IsCandidate decides whether a tag is eligible for automatic updates.
//
// Rules, in order:
//  1. Explicit build tags (X.Y.Z-b, X.Y.Z-bN) are always accepted.
//  2. Tags containing a prerelease marker (alpha, beta, rc) are rejected.
//  3. The tag's variant must equal requiredVariant exactly; a variant-less
//     tag ("" variant) only matches a variant-less requirement.
func IsCandidate(tag, requiredVariant string) bool {
	if buildTagPattern.MatchString(tag) {
		return true
	}

	lower := strings.ToLower(tag)
	for _, marker := range []string{"alpha", "beta", "rc"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	return ExtractVariant(tag) == requiredVariant
}
