package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/vup/pkg/exitcodes"
	"github.com/lucas-albers-lz4/vup/pkg/inventory"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
	"github.com/lucas-albers-lz4/vup/pkg/registry"
	"github.com/lucas-albers-lz4/vup/pkg/update"
)

var dryRun bool

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update pinned versions to the best available upstream versions",
		Long:  "Fetches the available versions for every artifact in the update configuration, rewrites pins in place, and writes a run report. Individual artifact failures are reported, not fatal.",
		Args:  cobra.NoArgs,
		RunE:  runUpdate,
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "decide and report updates without writing any file")
	return cmd
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	path := resolveConfigPath()

	exists, err := afero.Exists(AppFs, path)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitGeneralRuntimeError, Err: err}
	}
	if !exists {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitMissingConfig,
			Err:  fmt.Errorf("update config %s not found, run 'vup discover' first", path),
		}
	}

	cfg, err := inventory.Load(AppFs, path)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInvalidConfig,
			Err:  err,
		}
	}

	runner := update.NewRunner(AppFs, registry.NewClient(), cfg, repoRoot, dryRun)
	outcomes, err := runner.Run(cmd.Context())
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitGeneralRuntimeError,
			Err:  fmt.Errorf("update run aborted: %w", err),
		}
	}

	counts := map[update.Status]int{}
	for _, out := range outcomes {
		counts[out.Status]++
	}
	log.Info("update run complete",
		"dryRun", dryRun,
		"updated", counts[update.StatusUpdated],
		"upToDate", counts[update.StatusUpToDate],
		"skipped", counts[update.StatusSkipped],
		"failed", counts[update.StatusFailed])

	if dryRun {
		return nil
	}
	reportPath := filepath.Join(repoRoot, update.ReportPath)
	if err := update.WriteReport(AppFs, reportPath, outcomes); err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitReportWriteFailed,
			Err:  err,
		}
	}
	return nil
}
