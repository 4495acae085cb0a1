package version

import "strings"

// prereleaseMarkers are substrings that disqualify a chart version from
// stable-release selection, checked case-insensitively.
var prereleaseMarkers = []string{"alpha", "beta", "rc", "-pre", ".pre"}

// LatestStable returns the highest stable version from the list, by
// normalized ordering. Prerelease versions are excluded even when they would
// order above every stable one. The returned string is the original entry,
// not its normalized form, so callers can write it back verbatim. Returns ""
// when no entry qualifies.
func LatestStable(versions []string) string {
	var (
		best    *Version
		bestRaw string
	)
	for _, raw := range versions {
		lower := strings.ToLower(raw)
		skip := false
		for _, marker := range prereleaseMarkers {
			if strings.Contains(lower, marker) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		v, ok := Parse(raw)
		if !ok {
			continue
		}
		// Ties between distinct spellings of the same version (1.0.0 vs
		// v1.0.0) resolve to the lexicographically greater original string,
		// keeping selection deterministic.
		if best == nil || v.GreaterThan(best) || (v.Compare(best) == 0 && raw > bestRaw) {
			best, bestRaw = v, raw
		}
	}
	return bestRaw
}
