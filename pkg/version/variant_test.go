package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVariant(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{name: "alpine_with_version", tag: "18.1-alpine3.22", want: "alpine"},
		{name: "alpine_plain", tag: "1.24.1-alpine", want: "alpine"},
		{name: "debian", tag: "8.0.39-debian", want: "debian"},
		{name: "slim_bookworm", tag: "1.2.3-slim-bookworm", want: "slim"},
		{name: "uppercase_lowered", tag: "1.2.3-Alpine", want: "alpine"},
		{name: "v_prefixed_alpine", tag: "v1.24.1-alpine", want: "alpine"},
		{name: "v_prefixed_slim_with_version", tag: "v18.1-slim3.22", want: "slim"},
		{name: "v_prefixed_no_variant", tag: "v1.2.3", want: ""},
		{name: "no_variant", tag: "1.2.3", want: ""},
		{name: "no_variant_short", tag: "18.1", want: ""},
		{name: "empty", tag: "", want: ""},
		{name: "no_numeric_core", tag: "latest", want: ""},
		{name: "numeric_suffix_only", tag: "1.2.3-42", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVariant(tt.tag))
		})
	}
}

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		name            string
		tag             string
		requiredVariant string
		want            bool
	}{
		{name: "plain_semver", tag: "1.2.3", requiredVariant: "", want: true},
		{name: "short_version", tag: "18.1", requiredVariant: "", want: true},
		{name: "alpha_rejected", tag: "1.0.0-alpha", requiredVariant: "", want: false},
		{name: "beta_rejected", tag: "1.0.0-beta1", requiredVariant: "", want: false},
		{name: "rc_rejected", tag: "1.0.0-rc1", requiredVariant: "", want: false},
		{name: "rc_rejected_with_variant_required", tag: "1.0.0-rc1-alpine", requiredVariant: "alpine", want: false},
		{name: "build_tag_bare", tag: "1.2.3-b", requiredVariant: "", want: true},
		{name: "build_tag_numbered", tag: "1.2.3-b1", requiredVariant: "", want: true},
		{name: "build_tag_bypasses_variant", tag: "1.2.3-b2", requiredVariant: "alpine", want: true},
		{name: "matching_variant", tag: "1.2.3-alpine", requiredVariant: "alpine", want: true},
		{name: "wrong_variant", tag: "1.2.3-debian", requiredVariant: "alpine", want: false},
		{name: "missing_required_variant", tag: "1.2.3", requiredVariant: "alpine", want: false},
		// Strict symmetry: a variant-only match, absent never matches a
		// concrete variant and vice versa.
		{name: "variant_against_absent", tag: "1.2.3-alpine", requiredVariant: "", want: false},
		{name: "absent_against_absent", tag: "1.2.3", requiredVariant: "", want: true},
		// The v prefix is spelling, not a variant escape hatch.
		{name: "v_prefixed_variant_against_absent", tag: "v1.25.0-alpine", requiredVariant: "", want: false},
		{name: "v_prefixed_matching_variant", tag: "v1.2.3-alpine", requiredVariant: "alpine", want: true},
		{name: "v_prefixed_absent_against_absent", tag: "v1.2.3", requiredVariant: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCandidate(tt.tag, tt.requiredVariant))
		})
	}
}

func TestLatestStable(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{
			name:     "basic",
			versions: []string{"1.0.0", "1.1.0", "2.0.0"},
			want:     "2.0.0",
		},
		{
			name:     "v_prefix_preserved",
			versions: []string{"v1.0.0", "v2.0.0", "v1.5.0"},
			want:     "v2.0.0",
		},
		{
			name:     "prereleases_excluded",
			versions: []string{"1.0.0", "1.1.0", "2.0.0-alpha", "2.0.0-beta", "2.0.0-rc1"},
			want:     "1.1.0",
		},
		{
			name:     "pre_markers_excluded",
			versions: []string{"1.0.0", "2.0.0-pre", "2.0.0.pre1"},
			want:     "1.0.0",
		},
		{name: "empty", versions: []string{}, want: ""},
		{name: "only_prereleases", versions: []string{"2.0.0-alpha", "2.0.0-rc1"}, want: ""},
		{name: "no_parseable", versions: []string{"alpha", "beta", "latest"}, want: ""},
		{
			name:     "unparseable_skipped",
			versions: []string{"latest", "not-a-version", "2.0.0", "1.0.0"},
			want:     "2.0.0",
		},
		{
			name:     "mixed_dialects",
			versions: []string{"v1.2.0", "1.3.0", "1.3.0-rc1", "1.2.9-p4"},
			want:     "1.3.0",
		},
		{
			name:     "post_release_wins_at_same_release",
			versions: []string{"1.24.1", "1.24.1-p2", "1.24.1-p1"},
			want:     "1.24.1-p2",
		},
		{
			name:     "equal_spellings_deterministic",
			versions: []string{"1.0.0", "v1.0.0"},
			want:     "v1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LatestStable(tt.versions))
		})
	}
}
