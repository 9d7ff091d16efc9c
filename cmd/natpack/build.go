// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/natpack/natpack/internal/buildcmd"

	"github.com/spf13/cobra"
)

// newBuildCommand creates the `natpack build` command. It reports the command line the
// project builds with; running it is left to the caller.
func newBuildCommand(app *App) *cobra.Command {
	var words bool
	c := &cobra.Command{
		Use:   "build",
		Short: "Show the project's build command",
		Long: `Show the build command of the project: the 'build' field of natpack.cue,
or else the default build command of the defaults profile.

Parameters such as $SRC are expanded from the environment. Use --words to
print one argument per line.`,
		Args: cobra.NoArgs,
	}
	c.Flags().BoolVar(&words, "words", false, "print one argument per line")
	c.RunE = app.runE(func(cmd *cobra.Command, _ []string) error {
		s, err := app.newSession(cmd.Context())
		if err != nil {
			return err
		}
		resolved, err := buildcmd.Resolve(s.project.Build, s.profile, os.Getenv)
		if err != nil {
			return err
		}
		s.logger.Debug("Resolved build command", "origin", resolved.Origin, "profile", resolved.Profile)

		if words {
			for _, arg := range resolved.Args {
				fmt.Fprintln(app.stdout, arg)
			}
			return nil
		}
		fmt.Fprintln(app.stdout, resolved.String())
		return nil
	})
	return c
}
