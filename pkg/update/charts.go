package update

import (
	"context"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/vup/pkg/inventory"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
	"github.com/lucas-albers-lz4/vup/pkg/version"
)

const (
	kindArgoApp   = "argo app"
	kindHelmChart = "helm chart"
	kindImage     = "docker image"
)

// latestChartVersion fetches the chart's published versions and picks the
// highest stable one, after stripping versions matched by the chart's scoped
// ignore patterns.
func (r *Runner) latestChartVersion(ctx context.Context, repoURL, name string) (string, error) {
	release, err := r.acquire(ctx, repoHost(repoURL))
	if err != nil {
		return "", err
	}
	defer release()

	versions, err := r.client.HelmChartVersions(ctx, repoURL, name)
	if err != nil {
		return "", err
	}
	if exclude := r.cfg.Ignore.ChartVersionExcluder(name); exclude != nil {
		kept := versions[:0]
		for _, v := range versions {
			if !exclude(v) {
				kept = append(kept, v)
			}
		}
		versions = kept
	}
	return version.LatestStable(versions), nil
}

// argoAppPin is the part of an Application manifest the update verifies
// before editing: the chart name must match the inventory entry, otherwise
// the targetRevision belongs to something else.
type argoAppPin struct {
	Spec struct {
		Source struct {
			Chart          string `json:"chart"`
			TargetRevision string `json:"targetRevision"`
		} `json:"source"`
	} `json:"spec"`
}

func (r *Runner) updateArgoApp(ctx context.Context, app inventory.ArgoApp) Outcome {
	// Whole-artifact ignores short-circuit before any network fetch.
	if ignored, reason := r.cfg.Ignore.ChartIgnored(app.Name); ignored {
		return skipped(kindArgoApp, app.Name, reason)
	}

	latest, err := r.latestChartVersion(ctx, app.RepoURL, app.Name)
	if err != nil {
		return failed(kindArgoApp, app.Name, err)
	}
	if latest == "" {
		return skipped(kindArgoApp, app.Name, "no stable versions published")
	}

	data, err := r.readFile(app.File)
	if err != nil {
		return failed(kindArgoApp, app.Name, err)
	}
	var pin argoAppPin
	if err := sigsyaml.Unmarshal(data, &pin); err != nil {
		return skipped(kindArgoApp, app.Name, "manifest is not parseable YAML")
	}
	if pin.Spec.Source.Chart != app.Name {
		return skipped(kindArgoApp, app.Name, "manifest no longer pins this chart")
	}

	current := pin.Spec.Source.TargetRevision
	if current == latest {
		return Outcome{Kind: kindArgoApp, Name: app.Name, Status: StatusUpToDate}
	}

	ok, err := r.patchFile(app.File, "targetRevision", current, latest)
	if err != nil {
		return failed(kindArgoApp, app.Name, err)
	}
	if !ok {
		return skipped(kindArgoApp, app.Name, "targetRevision not found in manifest")
	}
	return Outcome{
		Kind:    kindArgoApp,
		Name:    app.Name,
		Status:  StatusUpdated,
		Changes: []Change{{Name: app.Name, File: app.File, Old: current, New: latest}},
	}
}

// chartVersionFn extracts the pinned version of the named chart from one
// manifest, or "" when the file no longer references it.
type chartVersionFn func(data []byte, name string) string

// kustomizeChartVersion reads helmCharts[].version from a
// kustomization.yaml.
func kustomizeChartVersion(data []byte, name string) string {
	var k struct {
		HelmCharts []struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"helmCharts"`
	}
	if err := sigsyaml.Unmarshal(data, &k); err != nil {
		return ""
	}
	for _, chart := range k.HelmCharts {
		if chart.Name == name {
			return chart.Version
		}
	}
	return ""
}

// chartDependencyVersion reads dependencies[].version from a Chart.yaml.
func chartDependencyVersion(data []byte, name string) string {
	var c struct {
		Dependencies []struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"dependencies"`
	}
	if err := sigsyaml.Unmarshal(data, &c); err != nil {
		return ""
	}
	for _, dep := range c.Dependencies {
		if dep.Name == name {
			return dep.Version
		}
	}
	return ""
}

// updateChart reconciles one chart pinned in one or more files. Files where
// the chart's version block has disappeared are skipped individually; the
// chart is marked updated if any file changed.
func (r *Runner) updateChart(ctx context.Context, chart inventory.HelmChart, pinned chartVersionFn) Outcome {
	if ignored, reason := r.cfg.Ignore.ChartIgnored(chart.Name); ignored {
		return skipped(kindHelmChart, chart.Name, reason)
	}

	latest, err := r.latestChartVersion(ctx, chart.RepoURL, chart.Name)
	if err != nil {
		return failed(kindHelmChart, chart.Name, err)
	}
	if latest == "" {
		return skipped(kindHelmChart, chart.Name, "no stable versions published")
	}

	out := Outcome{Kind: kindHelmChart, Name: chart.Name, Status: StatusUpToDate}
	for _, file := range chart.Files {
		data, err := r.readFile(file)
		if err != nil {
			return failed(kindHelmChart, chart.Name, err)
		}
		current := pinned(data, chart.Name)
		if current == "" {
			log.Warn("chart pin missing from file", "chart", chart.Name, "file", file)
			continue
		}
		if current == latest {
			continue
		}

		ok, err := r.patchFile(file, "version", current, latest)
		if err != nil {
			return failed(kindHelmChart, chart.Name, err)
		}
		if !ok {
			log.Warn("version scalar not found in file", "chart", chart.Name, "file", file)
			continue
		}
		out.Status = StatusUpdated
		out.Changes = append(out.Changes, Change{Name: chart.Name, File: file, Old: current, New: latest})
	}
	return out
}
