// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/natpack/natpack/internal/unpack"

	"github.com/spf13/cobra"
)

// newUnpackCommand creates the `natpack unpack` command.
func newUnpackCommand(app *App) *cobra.Command {
	var skip bool
	c := &cobra.Command{
		Use:   "unpack",
		Short: "Unpack native dependencies into the dependency folder",
		Long: `Unpack the archives of the project's native dependencies into
<target_dir>/<dependency_dir>.

Files shipped by more than one dependency are renamed with the shortest
qualifier that tells the dependencies apart, for example LICENSE becomes
LICENSE-zlib. Dependencies whose kind is not native-static, native-exec or
native-dynamic are ignored.`,
		Args: cobra.NoArgs,
	}
	c.Flags().BoolVar(&skip, "skip", false, "do nothing (same as skip: true in natpack.cue)")
	c.RunE = app.runE(func(cmd *cobra.Command, _ []string) error {
		s, err := app.newSession(cmd.Context())
		if err != nil {
			return err
		}

		req := unpack.Request{
			Artifacts:     s.project.Artifacts(),
			TargetDir:     s.absTargetDir(),
			DependencyDir: s.cfg.DependencyDir,
			Skip:          skip || s.project.Skip,
		}
		res, err := unpack.New(unpack.WithLogger(s.logger)).Unpack(cmd.Context(), req)
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("Skipped"))
			return nil
		}
		fmt.Fprintf(app.stdout, "%s Unpacked %d dependencies into %s (%d files, %d renamed)\n",
			SuccessStyle.Render("✓"), res.Artifacts, CmdStyle.Render(res.Dir), res.Files, res.Renamed)
		return nil
	})
	return c
}
