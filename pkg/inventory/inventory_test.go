package inventory

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lucas-albers-lz4/vup/pkg/fileutil"
	"github.com/lucas-albers-lz4/vup/pkg/ignore"
)

const sampleConfig = `ignore:
  helmCharts:
    - name: grafana
  dockerImages:
    - id: postgres
      tagPattern: "18\\."
argoApps:
  - name: redis
    repoUrl: https://charts.bitnami.com/bitnami
    file: apps/redis.yaml
kustomizeHelmCharts:
  - name: ingress-nginx
    repoUrl: https://kubernetes.github.io/ingress-nginx
    files:
      - overlays/prod/kustomization.yaml
      - overlays/dev/kustomization.yaml
dockerImages:
  - id: postgres
    registry: dockerhub
    repository: library/postgres
    file: base/db.yaml
    yamlPath:
      - spec
      - template
      - spec
      - containers
      - 0
      - image
`

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, DefaultPath, []byte(sampleConfig), fileutil.ReadWriteUserReadOthers))

	cfg, err := Load(fs, DefaultPath)
	require.NoError(t, err)

	require.Len(t, cfg.ArgoApps, 1)
	assert.Equal(t, "redis", cfg.ArgoApps[0].Name)
	assert.Equal(t, "apps/redis.yaml", cfg.ArgoApps[0].File)

	require.Len(t, cfg.KustomizeHelmCharts, 1)
	assert.Len(t, cfg.KustomizeHelmCharts[0].Files, 2)

	require.Len(t, cfg.DockerImages, 1)
	img := cfg.DockerImages[0]
	assert.Equal(t, "dockerhub", img.Registry)
	assert.Equal(t, YAMLPath{"spec", "template", "spec", "containers", 0, "image"}, img.YAMLPath)

	// Ignore rules come back compiled: the tag pattern filters candidates.
	require.NotNil(t, cfg.Ignore)
	exclude := cfg.Ignore.ImageTagExcluder("postgres", "library/postgres")
	require.NotNil(t, exclude)
	assert.True(t, exclude("18.1"))
	assert.False(t, exclude("17.2"))
}

func TestLoadMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, DefaultPath)
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, DefaultPath, []byte("argoApps: [unclosed"), fileutil.ReadWriteUserReadOthers))
	_, err := Load(fs, DefaultPath)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := &Config{
		ArgoApps: []ArgoApp{{Name: "redis", RepoURL: "https://example.com", File: "apps/redis.yaml"}},
		DockerImages: []DockerImage{{
			ID: "nginx", Registry: "dockerhub", Repository: "library/nginx",
			File: "web.yaml", YAMLPath: YAMLPath{"spec", "containers", 0, "image"},
		}},
	}

	require.NoError(t, Save(fs, DefaultPath, cfg))
	loaded, err := Load(fs, DefaultPath)
	require.NoError(t, err)

	assert.Equal(t, cfg.ArgoApps, loaded.ArgoApps)
	assert.Equal(t, cfg.DockerImages, loaded.DockerImages)
}

func TestYAMLPathFollow(t *testing.T) {
	doc := map[string]any{}
	require.NoError(t, yaml.Unmarshal([]byte(`
spec:
  template:
    spec:
      containers:
        - name: web
          image: nginx:1.24.0
        - name: sidecar
          image: envoy:1.30.0
`), &doc))

	value, err := YAMLPath{"spec", "template", "spec", "containers", 0, "image"}.Follow(doc)
	require.NoError(t, err)
	assert.Equal(t, "nginx:1.24.0", value)

	value, err = YAMLPath{"spec", "template", "spec", "containers", 1, "image"}.Follow(doc)
	require.NoError(t, err)
	assert.Equal(t, "envoy:1.30.0", value)

	_, err = YAMLPath{"spec", "missing"}.Follow(doc)
	assert.Error(t, err)

	_, err = YAMLPath{"spec", "template", "spec", "containers", 5}.Follow(doc)
	assert.Error(t, err)

	_, err = YAMLPath{"spec", "template", 0}.Follow(doc)
	assert.Error(t, err)
}

func TestMergePreservesManualEntriesAndIgnore(t *testing.T) {
	existing := &Config{
		Ignore: &ignore.Rules{HelmCharts: []ignore.ChartRule{{Name: "grafana"}}},
		ArgoApps: []ArgoApp{
			// Manually customized repo URL; must survive rediscovery.
			{Name: "redis", RepoURL: "https://mirror.internal/bitnami", File: "apps/redis.yaml"},
		},
	}
	existing.Ignore.Compile()

	discovered := &Config{
		ArgoApps: []ArgoApp{
			{Name: "redis", RepoURL: "https://charts.bitnami.com/bitnami", File: "apps/redis.yaml"},
			{Name: "grafana", RepoURL: "https://grafana.github.io/helm-charts", File: "apps/grafana.yaml"},
			{Name: "argo-cd", RepoURL: "https://argoproj.github.io/argo-helm", File: "apps/argocd.yaml"},
		},
	}

	merged := Merge(existing, discovered)

	require.NotNil(t, merged.Ignore)
	require.Len(t, merged.ArgoApps, 2, "ignored grafana must be dropped")
	assert.Equal(t, "argo-cd", merged.ArgoApps[0].Name)
	assert.Equal(t, "redis", merged.ArgoApps[1].Name)
	assert.Equal(t, "https://mirror.internal/bitnami", merged.ArgoApps[1].RepoURL,
		"existing entry wins over discovered")
}

func TestMergeImagesKeyedByRegistryRepo(t *testing.T) {
	existing := &Config{
		DockerImages: []DockerImage{
			{ID: "db", Registry: "dockerhub", Repository: "library/postgres", File: "old.yaml"},
		},
	}
	discovered := &Config{
		DockerImages: []DockerImage{
			{ID: "postgres", Registry: "dockerhub", Repository: "library/postgres", File: "new.yaml"},
			{ID: "nginx", Registry: "dockerhub", Repository: "library/nginx", File: "web.yaml"},
		},
	}

	merged := Merge(existing, discovered)

	require.Len(t, merged.DockerImages, 2)
	// Same (registry, repository) key: the existing entry is kept.
	assert.Equal(t, "db", merged.DockerImages[0].ID)
	assert.Equal(t, "old.yaml", merged.DockerImages[0].File)
	assert.Equal(t, "nginx", merged.DockerImages[1].ID)
}

func TestMergeChartsSorted(t *testing.T) {
	merged := Merge(&Config{}, &Config{
		KustomizeHelmCharts: []HelmChart{
			{Name: "zookeeper", RepoURL: "https://example.com/z", Files: []string{"z.yaml"}},
			{Name: "argo-cd", RepoURL: "https://example.com/a", Files: []string{"a.yaml"}},
		},
	})

	require.Len(t, merged.KustomizeHelmCharts, 2)
	assert.Equal(t, "argo-cd", merged.KustomizeHelmCharts[0].Name)
	assert.Equal(t, "zookeeper", merged.KustomizeHelmCharts[1].Name)
}
