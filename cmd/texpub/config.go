// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"texpub-cli/internal/config"
	"texpub-cli/internal/issue"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage texpub configuration",
	Long: `Manage texpub configuration.

Configuration is stored in:
  - Linux: ~/.config/texpub/config.cue
  - macOS: ~/Library/Application Support/texpub/config.cue
  - Windows: %APPDATA%\texpub\config.cue

The path template definitions live in 'templates.yml' next to the
config file unless templates_file points elsewhere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration and template definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a configuration file without loading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfigFile(args[0])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("auto")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := filepath.Join(cfgDir, "config.cue")
		if fileExistsCheck(cfgPath) {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", CmdStyle.Render("templates_file"), SuccessStyle.Render(cfg.TemplatesFile.String()))
	fmt.Printf("%s: %s\n", CmdStyle.Render("work_root"), SuccessStyle.Render(cfg.WorkRoot.String()))
	fmt.Printf("%s: %s\n", CmdStyle.Render("publish_root"), SuccessStyle.Render(cfg.PublishRoot.String()))
	fmt.Printf("%s: %s\n", CmdStyle.Render("registry_root"), SuccessStyle.Render(cfg.RegistryRoot.String()))
	fmt.Printf("%s: %s\n", CmdStyle.Render("preset_prefix"), SuccessStyle.Render(string(cfg.PresetPrefix)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("timeout_seconds"), SuccessStyle.Render(fmt.Sprintf("%d", cfg.TimeoutSeconds)))
	if cfg.ExportHook != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("export_hook"), SuccessStyle.Render("(configured)"))
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("export_hook"), SubtitleStyle.Render("(none, export runs out-of-band)"))
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("ui.color_scheme"), SuccessStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("%s: %v\n", CmdStyle.Render("ui.verbose"), cfg.UI.Verbose)
	return nil
}

func initConfig() error {
	if err := config.CreateDefaultConfig(); err != nil {
		return err
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Printf("%s configuration created in %s\n", SuccessStyle.Render("ok"), CmdStyle.Render(cfgDir))
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(cfgDir, "config.cue"))
	return nil
}

func validateConfigFile(path string) error {
	if _, err := config.ValidateFile(path); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("invalid: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}
	fmt.Printf("%s %s\n", SuccessStyle.Render("valid"), CmdStyle.Render(path))
	return nil
}

// fileExistsCheck reports whether path exists and is a regular file.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
