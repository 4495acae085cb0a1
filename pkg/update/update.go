// Package update drives a reconciliation run: for every artifact in the
// inventory it fetches the available versions upstream, decides the best
// acceptable one, and rewrites the pinning scalar in place. Artifacts are
// processed concurrently with per-registry rate caps; file writes are
// serialized so concurrent edits to a shared file never interleave.
package update

import (
	"context"
	"net/url"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lucas-albers-lz4/vup/pkg/fileutil"
	"github.com/lucas-albers-lz4/vup/pkg/inventory"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
	"github.com/lucas-albers-lz4/vup/pkg/patch"
	"github.com/lucas-albers-lz4/vup/pkg/registry"
)

// overallWorkerCap bounds in-flight artifact tasks across all registries.
const overallWorkerCap = 10

// Per-registry concurrency caps, tuned to each registry's observed rate
// limiting. Unlisted hosts get defaultRegistryLimit.
const (
	dockerHubLimit     = 3
	dockerHubAuthLimit = 5
	ghcrLimit          = 10

	defaultRegistryLimit = 5
)

// Runner executes one reconciliation run over a loaded inventory.
type Runner struct {
	fs     afero.Fs
	client *registry.Client
	cfg    *inventory.Config
	root   string
	dryRun bool

	// writeMu serializes every read-patch-write cycle; charts and images
	// can pin versions in the same file.
	writeMu sync.Mutex

	semMu sync.Mutex
	sems  map[string]*semaphore.Weighted

	outMu    sync.Mutex
	outcomes []Outcome
}

// NewRunner builds a Runner operating on the tree rooted at root. With
// dryRun set, every decision is made and reported but no file is written.
func NewRunner(fs afero.Fs, client *registry.Client, cfg *inventory.Config, root string, dryRun bool) *Runner {
	r := &Runner{
		fs:     fs,
		client: client,
		cfg:    cfg,
		root:   root,
		dryRun: dryRun,
		sems:   map[string]*semaphore.Weighted{},
	}
	hubLimit := int64(dockerHubLimit)
	if client.DockerHubAuthenticated() {
		hubLimit = dockerHubAuthLimit
	}
	r.sems["dockerhub"] = semaphore.NewWeighted(hubLimit)
	r.sems["ghcr.io"] = semaphore.NewWeighted(ghcrLimit)
	return r
}

// Run processes every artifact and returns the outcomes, sorted by kind and
// name. The returned error is non-nil only when the context is cancelled;
// per-artifact failures are outcomes, never run failures.
func (r *Runner) Run(ctx context.Context) ([]Outcome, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(overallWorkerCap)

	for _, app := range r.cfg.ArgoApps {
		app := app
		g.Go(func() error {
			r.record(r.updateArgoApp(ctx, app))
			return nil
		})
	}
	for _, chart := range r.cfg.KustomizeHelmCharts {
		chart := chart
		g.Go(func() error {
			r.record(r.updateChart(ctx, chart, kustomizeChartVersion))
			return nil
		})
	}
	for _, chart := range r.cfg.ChartDependencies {
		chart := chart
		g.Go(func() error {
			r.record(r.updateChart(ctx, chart, chartDependencyVersion))
			return nil
		})
	}
	for _, image := range r.cfg.DockerImages {
		image := image
		g.Go(func() error {
			r.record(r.updateImage(ctx, image))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(r.outcomes, func(i, j int) bool {
		if r.outcomes[i].Kind != r.outcomes[j].Kind {
			return r.outcomes[i].Kind < r.outcomes[j].Kind
		}
		return r.outcomes[i].Name < r.outcomes[j].Name
	})
	return r.outcomes, nil
}

func (r *Runner) record(out Outcome) {
	switch out.Status {
	case StatusFailed:
		log.Error("artifact update failed", "kind", out.Kind, "name", out.Name, "reason", out.Reason)
	case StatusSkipped:
		log.Warn("artifact skipped", "kind", out.Kind, "name", out.Name, "reason", out.Reason)
	default:
		log.Debug("artifact processed", "kind", out.Kind, "name", out.Name, "status", string(out.Status))
	}
	r.outMu.Lock()
	r.outcomes = append(r.outcomes, out)
	r.outMu.Unlock()
}

// acquire takes a slot on the named registry's semaphore, creating a
// default-capacity one for hosts seen for the first time.
func (r *Runner) acquire(ctx context.Context, key string) (func(), error) {
	r.semMu.Lock()
	sem, ok := r.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(defaultRegistryLimit)
		r.sems[key] = sem
	}
	r.semMu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// repoHost keys chart repositories by host so one slow Helm repo cannot
// starve the others.
func repoHost(repoURL string) string {
	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return repoURL
	}
	return u.Host
}

// patchFile applies a single-scalar edit to the file at rel (relative to the
// run root) under the process-wide write mutex. Returns whether the scalar
// was found; in dry-run mode the file is left untouched either way.
func (r *Runner) patchFile(rel, key, oldValue, newValue string) (bool, error) {
	path := filepath.Join(r.root, rel)

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return false, err
	}
	patched, count := patch.Scalar(string(data), key, oldValue, newValue)
	if count == 0 {
		return false, nil
	}
	if r.dryRun {
		return true, nil
	}
	if err := afero.WriteFile(r.fs, path, []byte(patched), fileutil.ReadWriteUserReadOthers); err != nil {
		return false, err
	}
	return true, nil
}

// readFile reads rel (relative to the run root) under the write mutex so
// decisions never observe a half-written file.
func (r *Runner) readFile(rel string) ([]byte, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return afero.ReadFile(r.fs, filepath.Join(r.root, rel))
}
