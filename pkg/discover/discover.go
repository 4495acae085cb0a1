// Package discover walks a repository tree and builds the inventory of
// version-pinned artifacts: Argo CD Applications pinning Helm charts,
// kustomization.yaml helmCharts entries, Chart.yaml dependency blocks, and
// container image references inside Kubernetes workload manifests.
//
// Discovery is read-only and best-effort: files that are not valid YAML, or
// that lack the expected structure, are skipped silently. It produces a fresh
// inventory on every run; merging with an existing configuration is the
// inventory package's job.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/vup/pkg/inventory"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

// workloadKinds are the Kubernetes resource kinds that can carry container
// images.
var workloadKinds = map[string]bool{
	"Deployment":            true,
	"StatefulSet":           true,
	"DaemonSet":             true,
	"Job":                   true,
	"CronJob":               true,
	"Pod":                   true,
	"ReplicaSet":            true,
	"ReplicationController": true,
}

// argoApplication is the subset of an Argo CD Application manifest discovery
// cares about.
type argoApplication struct {
	Kind string `json:"kind"`
	Spec struct {
		Source struct {
			Chart          string `json:"chart"`
			RepoURL        string `json:"repoURL"`
			TargetRevision string `json:"targetRevision"`
		} `json:"source"`
	} `json:"spec"`
}

// kustomization is the subset of a kustomization.yaml discovery cares about.
type kustomization struct {
	HelmCharts []struct {
		Name    string `json:"name"`
		Repo    string `json:"repo"`
		Version string `json:"version"`
	} `json:"helmCharts"`
}

// chartManifest is the subset of a Chart.yaml discovery cares about.
type chartManifest struct {
	Dependencies []struct {
		Name       string `json:"name"`
		Repository string `json:"repository"`
		Version    string `json:"version"`
	} `json:"dependencies"`
}

// Run walks root and returns the discovered inventory, with every section
// sorted for stable output.
func Run(fs afero.Fs, root string) (*inventory.Config, error) {
	files, err := yamlFiles(fs, root)
	if err != nil {
		return nil, err
	}

	cfg := &inventory.Config{}
	kustomizeCharts := map[[2]string]*inventory.HelmChart{}
	chartDeps := map[[2]string]*inventory.HelmChart{}
	images := map[[2]string]inventory.DockerImage{}

	for _, path := range files {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			log.Warn("unreadable file skipped during discovery", "file", path, "error", err)
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		base := filepath.Base(path)
		switch base {
		case "kustomization.yaml":
			collectKustomizeCharts(data, rel, kustomizeCharts)
			continue
		case "Chart.yaml":
			collectChartDependencies(data, rel, chartDeps)
			continue
		}

		if app, ok := parseArgoApp(data); ok {
			cfg.ArgoApps = append(cfg.ArgoApps, inventory.ArgoApp{
				Name:    app.Spec.Source.Chart,
				RepoURL: app.Spec.Source.RepoURL,
				File:    rel,
			})
			continue
		}
		collectImages(data, rel, images)
	}

	sort.Slice(cfg.ArgoApps, func(i, j int) bool { return cfg.ArgoApps[i].Name < cfg.ArgoApps[j].Name })
	cfg.KustomizeHelmCharts = sortedCharts(kustomizeCharts)
	cfg.ChartDependencies = sortedCharts(chartDeps)
	cfg.DockerImages = sortedImages(images)

	log.Info("discovery complete",
		"argoApps", len(cfg.ArgoApps),
		"kustomizeHelmCharts", len(cfg.KustomizeHelmCharts),
		"chartDependencies", len(cfg.ChartDependencies),
		"dockerImages", len(cfg.DockerImages))
	return cfg, nil
}

// yamlFiles lists every .yaml file under root, skipping dot-directories
// (.git, .github, the registry cache, ...).
func yamlFiles(fs afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if info.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".yaml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// parseArgoApp reports whether data is an Argo CD Application pinning a Helm
// chart from an HTTP chart repository. Git-backed sources (URLs ending in
// .git, or non-HTTP URLs) are not chart artifacts and are skipped.
func parseArgoApp(data []byte) (*argoApplication, bool) {
	var app argoApplication
	if err := sigsyaml.Unmarshal(data, &app); err != nil {
		return nil, false
	}
	if app.Kind != "Application" {
		return nil, false
	}
	src := app.Spec.Source
	if src.Chart == "" || src.RepoURL == "" {
		return nil, false
	}
	if !strings.HasPrefix(src.RepoURL, "http") || strings.HasSuffix(src.RepoURL, ".git") {
		return nil, false
	}
	return &app, true
}

func collectKustomizeCharts(data []byte, rel string, acc map[[2]string]*inventory.HelmChart) {
	var k kustomization
	if err := sigsyaml.Unmarshal(data, &k); err != nil {
		return
	}
	for _, chart := range k.HelmCharts {
		if chart.Name == "" || chart.Repo == "" {
			continue
		}
		addChartFile(acc, chart.Name, chart.Repo, rel)
	}
}

func collectChartDependencies(data []byte, rel string, acc map[[2]string]*inventory.HelmChart) {
	var c chartManifest
	if err := sigsyaml.Unmarshal(data, &c); err != nil {
		return
	}
	for _, dep := range c.Dependencies {
		if dep.Name == "" || dep.Repository == "" {
			continue
		}
		// Local dependencies (file:// or alias references) have no queryable
		// index.
		if !strings.HasPrefix(dep.Repository, "http") {
			continue
		}
		addChartFile(acc, dep.Name, dep.Repository, rel)
	}
}

func addChartFile(acc map[[2]string]*inventory.HelmChart, name, repoURL, file string) {
	key := [2]string{name, repoURL}
	entry, ok := acc[key]
	if !ok {
		entry = &inventory.HelmChart{Name: name, RepoURL: repoURL}
		acc[key] = entry
	}
	entry.Files = append(entry.Files, file)
}

// collectImages records every container image pinned inside a workload
// manifest. Untagged images and templated references ($, {) are skipped.
func collectImages(data []byte, rel string, acc map[[2]string]inventory.DockerImage) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return
	}
	kind, _ := doc["kind"].(string)
	if !workloadKinds[kind] {
		return
	}

	for _, found := range imageScalars(doc, nil) {
		if !strings.Contains(found.image, ":") ||
			strings.Contains(found.image, "$") || strings.Contains(found.image, "{") {
			continue
		}
		ref, err := ParseImage(found.image)
		if err != nil {
			log.Warn("unparseable image reference skipped", "file", rel, "image", found.image, "error", err)
			continue
		}
		key := [2]string{ref.Registry, ref.Repository}
		if _, exists := acc[key]; exists {
			continue
		}
		acc[key] = inventory.DockerImage{
			ID:         ImageID(ref.Repository),
			Registry:   ref.Registry,
			Repository: ref.Repository,
			File:       rel,
			YAMLPath:   found.path,
		}
	}
}

type foundImage struct {
	path  inventory.YAMLPath
	image string
}

// imageScalars recursively finds every "image" string scalar, recording its
// structural path. containers/initContainers lists are handled explicitly so
// their entries get indexed paths.
func imageScalars(node any, path inventory.YAMLPath) []foundImage {
	var results []foundImage

	switch v := node.(type) {
	case map[string]any:
		if image, ok := v["image"].(string); ok {
			results = append(results, foundImage{path: appendPath(path, "image"), image: image})
		}
		for _, key := range []string{"containers", "initContainers"} {
			list, ok := v[key].([]any)
			if !ok {
				continue
			}
			for idx, item := range list {
				container, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if image, ok := container["image"].(string); ok {
					results = append(results, foundImage{
						path:  appendPath(path, key, idx, "image"),
						image: image,
					})
				}
			}
		}
		for key, value := range v {
			if key == "image" || key == "containers" || key == "initContainers" {
				continue
			}
			results = append(results, imageScalars(value, appendPath(path, key))...)
		}
	case []any:
		for idx, item := range v {
			results = append(results, imageScalars(item, appendPath(path, idx))...)
		}
	}
	return results
}

// appendPath copies before appending so sibling branches never share backing
// arrays.
func appendPath(path inventory.YAMLPath, steps ...any) inventory.YAMLPath {
	out := make(inventory.YAMLPath, len(path), len(path)+len(steps))
	copy(out, path)
	return append(out, steps...)
}

func sortedCharts(acc map[[2]string]*inventory.HelmChart) []inventory.HelmChart {
	out := make([]inventory.HelmChart, 0, len(acc))
	for _, chart := range acc {
		sort.Strings(chart.Files)
		out = append(out, *chart)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].RepoURL < out[j].RepoURL
	})
	return out
}

func sortedImages(acc map[[2]string]inventory.DockerImage) []inventory.DockerImage {
	out := make([]inventory.DockerImage, 0, len(acc))
	for _, img := range acc {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
