// Package inventory models the update configuration file
// (.update-config.yaml): the inventory of version-pinned artifacts produced
// by discovery, plus the operator-maintained ignore section. The file is safe
// to regenerate: merging preserves manual entries and the ignore rules.
package inventory

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/lucas-albers-lz4/vup/pkg/fileutil"
	"github.com/lucas-albers-lz4/vup/pkg/ignore"
)

// DefaultPath is the conventional location of the update configuration,
// relative to the repository root.
const DefaultPath = ".update-config.yaml"

// ArgoApp is an Argo CD Application pinning a Helm chart via
// spec.source.targetRevision.
type ArgoApp struct {
	Name    string `yaml:"name"`
	RepoURL string `yaml:"repoUrl"`
	File    string `yaml:"file"`
}

// HelmChart is a chart referenced from one or more files: kustomization.yaml
// helmCharts entries or Chart.yaml dependency blocks. A single chart can be
// pinned in several files; all of them receive the same resolved version.
type HelmChart struct {
	Name    string   `yaml:"name"`
	RepoURL string   `yaml:"repoUrl"`
	Files   []string `yaml:"files"`
}

// DockerImage is a container image reference at a specific structural
// location inside a manifest file.
type DockerImage struct {
	ID         string   `yaml:"id"`
	Registry   string   `yaml:"registry"`
	Repository string   `yaml:"repository"`
	File       string   `yaml:"file"`
	YAMLPath   YAMLPath `yaml:"yamlPath"`
}

// Config is the full update configuration document.
type Config struct {
	Ignore              *ignore.Rules `yaml:"ignore,omitempty"`
	ArgoApps            []ArgoApp     `yaml:"argoApps,omitempty"`
	KustomizeHelmCharts []HelmChart   `yaml:"kustomizeHelmCharts,omitempty"`
	ChartDependencies   []HelmChart   `yaml:"chartDependencies,omitempty"`
	DockerImages        []DockerImage `yaml:"dockerImages,omitempty"`
}

// Load reads and parses the configuration from fs, compiling ignore rule
// patterns in the process.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Ignore.Compile()
	return &cfg, nil
}

// Save writes the configuration back to fs.
func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, fileutil.ReadWriteUserReadOthers); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Merge combines a freshly discovered configuration with an existing one.
// Existing entries win on key collisions so manual customizations survive
// rediscovery; the ignore section is always carried over from the existing
// config, and artifacts matching whole-artifact ignore rules are dropped from
// the discovered set before merging.
func Merge(existing, discovered *Config) *Config {
	merged := &Config{Ignore: existing.Ignore}
	rules := existing.Ignore

	merged.ArgoApps = mergeArgoApps(existing.ArgoApps, filterArgoApps(discovered.ArgoApps, rules))
	merged.KustomizeHelmCharts = mergeCharts(existing.KustomizeHelmCharts, filterCharts(discovered.KustomizeHelmCharts, rules))
	merged.ChartDependencies = mergeCharts(existing.ChartDependencies, filterCharts(discovered.ChartDependencies, rules))
	merged.DockerImages = mergeImages(existing.DockerImages, filterImages(discovered.DockerImages, rules))
	return merged
}

func filterArgoApps(apps []ArgoApp, rules *ignore.Rules) []ArgoApp {
	kept := make([]ArgoApp, 0, len(apps))
	for _, app := range apps {
		if ignored, reason := rules.ChartIgnored(app.Name); ignored {
			logSkip("argo app", app.Name, reason)
			continue
		}
		kept = append(kept, app)
	}
	return kept
}

func filterCharts(charts []HelmChart, rules *ignore.Rules) []HelmChart {
	kept := make([]HelmChart, 0, len(charts))
	for _, chart := range charts {
		if ignored, reason := rules.ChartIgnored(chart.Name); ignored {
			logSkip("helm chart", chart.Name, reason)
			continue
		}
		kept = append(kept, chart)
	}
	return kept
}

func filterImages(images []DockerImage, rules *ignore.Rules) []DockerImage {
	kept := make([]DockerImage, 0, len(images))
	for _, img := range images {
		if ignored, reason := rules.ImageIgnored(img.ID, img.Repository); ignored {
			logSkip("docker image", img.ID, reason)
			continue
		}
		kept = append(kept, img)
	}
	return kept
}

func mergeArgoApps(existing, discovered []ArgoApp) []ArgoApp {
	type key struct{ name, file string }
	byKey := make(map[key]ArgoApp, len(existing)+len(discovered))
	for _, app := range discovered {
		byKey[key{app.Name, app.File}] = app
	}
	for _, app := range existing {
		byKey[key{app.Name, app.File}] = app
	}

	out := make([]ArgoApp, 0, len(byKey))
	for _, app := range byKey {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].RepoURL != out[j].RepoURL {
			return out[i].RepoURL < out[j].RepoURL
		}
		return out[i].File < out[j].File
	})
	return out
}

func mergeCharts(existing, discovered []HelmChart) []HelmChart {
	type key struct{ name, repoURL string }
	byKey := make(map[key]HelmChart, len(existing)+len(discovered))
	for _, chart := range discovered {
		byKey[key{chart.Name, chart.RepoURL}] = chart
	}
	for _, chart := range existing {
		byKey[key{chart.Name, chart.RepoURL}] = chart
	}

	out := make([]HelmChart, 0, len(byKey))
	for _, chart := range byKey {
		out = append(out, chart)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].RepoURL < out[j].RepoURL
	})
	return out
}

func mergeImages(existing, discovered []DockerImage) []DockerImage {
	type key struct{ registry, repository string }
	byKey := make(map[key]DockerImage, len(existing)+len(discovered))
	for _, img := range discovered {
		byKey[key{img.Registry, img.Repository}] = img
	}
	for _, img := range existing {
		byKey[key{img.Registry, img.Repository}] = img
	}

	out := make([]DockerImage, 0, len(byKey))
	for _, img := range byKey {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		if out[i].Registry != out[j].Registry {
			return out[i].Registry < out[j].Registry
		}
		return out[i].Repository < out[j].Repository
	})
	return out
}
