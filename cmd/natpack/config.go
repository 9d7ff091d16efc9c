// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/natpack/natpack/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `natpack config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage natpack configuration",
		Long: `Manage natpack configuration.

Configuration is stored in:
  - Linux: ~/.config/natpack/config.cue
  - macOS: ~/Library/Application Support/natpack/config.cue
  - Windows: %APPDATA%\natpack\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app)
		}),
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		}),
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		}),
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	// The provider does not report the file it read, so derive it the way it does.
	path := app.flags.configPath
	if path == "" {
		if p, pathErr := config.ConfigFilePath(); pathErr == nil && fileExists(p) {
			path = p
		}
	}

	key := CmdStyle.Render
	value := SuccessStyle.Render
	none := SubtitleStyle.Render("(none)")

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)
	if path != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", key("Config file"), path)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	defaultProfile := none
	if cfg.DefaultProfile != "" {
		defaultProfile = value(cfg.DefaultProfile)
	}
	fmt.Fprintf(app.stdout, "%s: %s\n", key("default_profile"), defaultProfile)
	fmt.Fprintf(app.stdout, "%s: %s\n", key("target_dir"), value(cfg.TargetDir))
	fmt.Fprintf(app.stdout, "%s: %s\n", key("dependency_dir"), value(cfg.DependencyDir))

	fmt.Fprintf(app.stdout, "%s:\n", key("profile_paths"))
	if len(cfg.ProfilePaths) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", none)
	}
	for _, p := range cfg.ProfilePaths {
		fmt.Fprintf(app.stdout, "  - %s\n", value(p))
	}
	fmt.Fprintf(app.stdout, "%s: %s\n", key("profile search"), strings.Join(config.ProfileDirs(cfg), ", "))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", key("ui"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", value(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", value(fmt.Sprintf("%v", cfg.UI.Verbose)))
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
