// Package ignore resolves per-artifact override rules from the update
// configuration. A rule can ignore an artifact outright (by chart name, image
// id, or repository) or carry a version/tag pattern that only filters
// matching candidates out of the resolution pool while leaving the artifact
// itself eligible for other updates.
package ignore

import (
	"fmt"
	"regexp"

	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

// ChartRule scopes to a Helm chart by name. Without VersionPattern the chart
// is never touched; with it, only upstream versions matching the pattern are
// excluded from consideration.
type ChartRule struct {
	Name           string `json:"name" yaml:"name"`
	VersionPattern string `json:"versionPattern,omitempty" yaml:"versionPattern,omitempty"`

	compiled *regexp.Regexp
}

// ImageRule scopes to a container image by id or by repository. Without
// TagPattern the image is never touched; with it, only upstream tags matching
// the pattern are excluded from consideration.
type ImageRule struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
	TagPattern string `json:"tagPattern,omitempty" yaml:"tagPattern,omitempty"`

	compiled *regexp.Regexp
}

// Rules is the two-section ignore configuration, compiled once per run.
type Rules struct {
	HelmCharts   []ChartRule `json:"helmCharts,omitempty" yaml:"helmCharts,omitempty"`
	DockerImages []ImageRule `json:"dockerImages,omitempty" yaml:"dockerImages,omitempty"`
}

// Compile pre-compiles every rule pattern. A malformed pattern does not abort
// the run: the rule keeps its whole-artifact behavior, loses its pattern
// behavior, and the failure surfaces as a single warning. Call once at load
// time, before any artifact is processed.
func (r *Rules) Compile() {
	if r == nil {
		return
	}
	for i := range r.HelmCharts {
		rule := &r.HelmCharts[i]
		if rule.VersionPattern == "" {
			continue
		}
		compiled, err := compileAnchored(rule.VersionPattern)
		if err != nil {
			log.Warn("invalid versionPattern in ignore rule, pattern behavior disabled",
				"chart", rule.Name, "pattern", rule.VersionPattern, "error", err)
			rule.VersionPattern = ""
			continue
		}
		rule.compiled = compiled
	}
	for i := range r.DockerImages {
		rule := &r.DockerImages[i]
		if rule.TagPattern == "" {
			continue
		}
		compiled, err := compileAnchored(rule.TagPattern)
		if err != nil {
			log.Warn("invalid tagPattern in ignore rule, pattern behavior disabled",
				"id", rule.ID, "repository", rule.Repository, "pattern", rule.TagPattern, "error", err)
			rule.TagPattern = ""
			continue
		}
		rule.compiled = compiled
	}
}

// ChartIgnored reports whether a chart is excluded from updates entirely.
// Only rules without a version pattern block the whole artifact; scoped rules
// never do.
func (r *Rules) ChartIgnored(name string) (bool, string) {
	if r == nil {
		return false, ""
	}
	for i := range r.HelmCharts {
		rule := &r.HelmCharts[i]
		if rule.Name == name && rule.compiled == nil {
			return true, fmt.Sprintf("ignored by name: %s", name)
		}
	}
	return false, ""
}

// ImageIgnored reports whether an image is excluded from updates entirely,
// matched by id (unconditional) or by repository (only when the rule carries
// no tag pattern).
func (r *Rules) ImageIgnored(id, repository string) (bool, string) {
	if r == nil {
		return false, ""
	}
	for i := range r.DockerImages {
		rule := &r.DockerImages[i]
		if rule.ID != "" && rule.ID == id && rule.compiled == nil {
			return true, fmt.Sprintf("ignored by ID: %s", id)
		}
		if rule.Repository != "" && rule.Repository == repository && rule.compiled == nil {
			return true, fmt.Sprintf("ignored by repository: %s", repository)
		}
	}
	return false, ""
}

// ChartVersionExcluder returns the scoped candidate filter for a chart, or
// nil when no pattern rule applies. The returned func reports true for
// upstream versions that must be dropped before resolution.
func (r *Rules) ChartVersionExcluder(name string) func(string) bool {
	if r == nil {
		return nil
	}
	var patterns []*regexp.Regexp
	for i := range r.HelmCharts {
		rule := &r.HelmCharts[i]
		if rule.Name == name && rule.compiled != nil {
			patterns = append(patterns, rule.compiled)
		}
	}
	return excluder(patterns)
}

// ImageTagExcluder returns the scoped candidate filter for an image, or nil
// when no pattern rule applies.
func (r *Rules) ImageTagExcluder(id, repository string) func(string) bool {
	if r == nil {
		return nil
	}
	var patterns []*regexp.Regexp
	for i := range r.DockerImages {
		rule := &r.DockerImages[i]
		if rule.compiled == nil {
			continue
		}
		if (rule.ID != "" && rule.ID == id) || (rule.Repository != "" && rule.Repository == repository) {
			patterns = append(patterns, rule.compiled)
		}
	}
	return excluder(patterns)
}

// compileAnchored anchors the pattern at the start of the candidate string;
// the configuration format has always used prefix-match semantics.
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")")
}

func excluder(patterns []*regexp.Regexp) func(string) bool {
	if len(patterns) == 0 {
		return nil
	}
	return func(candidate string) bool {
		for _, p := range patterns {
			if p.MatchString(candidate) {
				return true
			}
		}
		return false
	}
}
