// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

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
)

// NewRootCommand builds the natpack command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "natpack",
		Short: "Package native build outputs and unpack native dependencies",
		Long: TitleStyle.Render("natpack") + SubtitleStyle.Render(" - packaging for native build outputs") + `

natpack collects the headers, libraries and executables a native build
leaves behind into one zip archive, laid out by kind and architecture,
and unpacks the archives of native dependencies into a shared folder.

Projects are described by a 'natpack.cue' file. Paths and patterns the
project leaves out are filled in from a defaults profile.

` + SubtitleStyle.Render("Examples:") + `
  natpack package              Write target/<artifact_id>.zip
  natpack package-static       Package only the static libraries
  natpack unpack               Unpack native dependencies
  natpack profile show linux   Show the linux defaults profile
  natpack config show          Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/natpack/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&app.flags.projectDir, "project", "C", ".", "folder holding natpack.cue")
	rootCmd.PersistentFlags().StringVarP(&app.flags.profile, "profile", "p", "", "defaults profile, overriding the project's")

	rootCmd.AddCommand(newPackageCommands(app)...)
	rootCmd.AddCommand(newUnpackCommand(app))
	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newProfileCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
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
