// Package main implements the command-line interface for vup, the GitOps
// version updater. It provides two commands:
//
//   - discover: walk the repository tree and build/refresh the update
//     configuration (.update-config.yaml)
//   - update: fetch available versions upstream and rewrite pinned versions
//     in place, producing a run report
//
// Per-artifact failures during an update never produce a non-zero exit;
// only startup problems (missing config, bad flags) do.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lucas-albers-lz4/vup/pkg/exitcodes"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

// Global flag variables.
var (
	configPath string
	logLevel   string
	repoRoot   string
)

// AppFs defines the filesystem interface to use, allows mocking in tests.
var AppFs = afero.NewOsFs()

// SetFs replaces the current filesystem with the provided one and returns a
// function to restore it. This is primarily used for testing.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

var rootCmd = &cobra.Command{
	Use:           "vup",
	Short:         "Keep version pins in a GitOps repository up to date",
	Long:          "vup discovers Helm chart and container image version pins in a repository tree and updates them to the best available upstream versions, preserving file formatting.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := log.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitInvalidLogLevel,
				Err:  err,
			}
		}
		log.SetLevel(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "update config file (default <root>/.update-config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "set log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&repoRoot, "root", ".", "repository root to operate on")

	viper.SetEnvPrefix("VUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newUpdateCmd())
}

// bindFlags registers every persistent flag with viper so VUP_* environment
// variables can stand in for flags left unset.
func bindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(f.Name, f); err != nil {
			log.Warn("failed to bind flag", "flag", f.Name, "error", err)
		}
	})
}

// resolveConfigPath returns the effective config file location for this
// invocation.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return defaultConfigPath()
}
