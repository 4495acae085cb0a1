package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/vup/pkg/discover"
	"github.com/lucas-albers-lz4/vup/pkg/exitcodes"
	"github.com/lucas-albers-lz4/vup/pkg/inventory"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

func defaultConfigPath() string {
	return filepath.Join(repoRoot, inventory.DefaultPath)
}

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Scan the repository tree and build the update configuration",
		Long:  "Walks the repository for Argo CD Applications, kustomize helmCharts entries, Chart.yaml dependencies, and container images in workload manifests, then writes the inventory to the update configuration. Existing entries and ignore rules are preserved.",
		Args:  cobra.NoArgs,
		RunE:  runDiscover,
	}
}

func runDiscover(_ *cobra.Command, _ []string) error {
	path := resolveConfigPath()

	discovered, err := discover.Run(AppFs, repoRoot)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitDiscoveryFailed,
			Err:  fmt.Errorf("discovery failed: %w", err),
		}
	}

	cfg := discovered
	exists, err := afero.Exists(AppFs, path)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitGeneralRuntimeError, Err: err}
	}
	if exists {
		existing, err := inventory.Load(AppFs, path)
		if err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitInvalidConfig,
				Err:  err,
			}
		}
		cfg = inventory.Merge(existing, discovered)
	}

	if err := inventory.Save(AppFs, path, cfg); err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitConfigWriteFailed,
			Err:  err,
		}
	}
	log.Info("update configuration written", "path", path,
		"argoApps", len(cfg.ArgoApps),
		"kustomizeHelmCharts", len(cfg.KustomizeHelmCharts),
		"chartDependencies", len(cfg.ChartDependencies),
		"dockerImages", len(cfg.DockerImages))
	return nil
}
