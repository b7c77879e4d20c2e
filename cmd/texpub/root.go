// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for texpub.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"texpub-cli/internal/config"
	"texpub-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "texpub",
		Short: "Template-driven texture set and work file publishing",
		Long: TitleStyle.Render("texpub") + SubtitleStyle.Render(" - Template-driven texture set and work file publishing") + `

texpub resolves studio filesystem paths from typed path templates and
publishes texture sets and work files into versioned publish areas,
registering every published artifact in a production registry.

Path templates are defined in a 'templates.yml' file and compose via
@includes; version numbers are allocated by scanning the publish area,
never guessed.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'texpub config init' to create the default configuration
  2. Point work_root and publish_root at your project tree
  3. Publish with: texpub publish textures --asset <name> --task <task>

` + SubtitleStyle.Render("Examples:") + `
  texpub publish textures --asset ship --task surfacing --preset shotgrid_pbr
  texpub publish project assets/ship/surfacing/work/hull.v007.spp
  texpub template resolve texture_publish -f Asset=ship -f task_name=surfacing ...
  texpub versions next --family texture --asset ship --task surfacing --name hull
  texpub config show`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/texpub/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	cfg, err := loadConfig(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// loadConfig loads the configuration, honoring the --config flag.
func loadConfig(ctx context.Context) (*config.Config, error) {
	return config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
