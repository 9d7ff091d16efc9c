// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/natpack/natpack/internal/packager"
	"github.com/natpack/natpack/internal/watch"

	"github.com/spf13/cobra"
)

// newPackageCommands creates `natpack package` and its per-kind variants.
func newPackageCommands(app *App) []*cobra.Command {
	variants := []struct {
		use   string
		scope packager.Scope
		short string
	}{
		{"package", packager.ScopeAll, "Package every build output into the project archive"},
		{"package-static", packager.ScopeStatic, "Package the plain sources and the static libraries"},
		{"package-dynamic", packager.ScopeDynamic, "Package the plain sources and the dynamic libraries"},
		{"package-exec", packager.ScopeExec, "Package the plain sources and the executables"},
	}

	cmds := make([]*cobra.Command, 0, len(variants))
	for _, v := range variants {
		var skip, watchMode bool
		c := &cobra.Command{
			Use:   v.use,
			Short: v.short,
			Long: v.short + `.

Collections the project leaves out are synthesized from the defaults
profile; configured entries get their missing paths and patterns from it.
The archive is written to <target_dir>/<artifact_id>.zip.

With --watch the archive is rewritten whenever a file below the project
folder changes, until interrupted.`,
			Args: cobra.NoArgs,
		}
		c.Flags().BoolVar(&skip, "skip", false, "do nothing (same as skip: true in natpack.cue)")
		c.Flags().BoolVarP(&watchMode, "watch", "w", false, "package again whenever project files change")
		c.RunE = app.runE(func(cmd *cobra.Command, _ []string) error {
			if watchMode {
				return watchPackage(cmd, app, v.scope, skip)
			}
			return runPackage(cmd.Context(), app, v.scope, skip)
		})
		cmds = append(cmds, c)
	}
	return cmds
}

// runPackage loads the project afresh, so edits to natpack.cue apply to the next run in
// watch mode.
func runPackage(ctx context.Context, app *App, scope packager.Scope, skip bool) error {
	s, err := app.newSession(ctx)
	if err != nil {
		return err
	}

	req := packager.Request{
		Profile:    s.profile,
		Roots:      s.project.Roots(),
		Scope:      scope,
		ArtifactID: s.project.ArtifactID,
		TargetDir:  s.targetDir(),
		BaseDir:    s.project.Dir,
		Skip:       skip || s.project.Skip,
	}
	res, err := packager.New(packager.WithLogger(s.logger)).Package(ctx, req)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("Skipped"))
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Wrote %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(res.Archive))
	fmt.Fprintf(app.stdout, "  entries: %d\n  size:    %d bytes\n  blake3:  %s\n", res.Entries, res.Size, res.Digest)
	return nil
}

// watchPackage packages once, then again after every batch of changes. Failed runs are
// reported and the watch goes on.
func watchPackage(cmd *cobra.Command, app *App, scope packager.Scope, skip bool) error {
	ctx := cmd.Context()
	s, err := app.newSession(ctx)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) {
		if err := runPackage(ctx, app, scope, skip); err != nil {
			app.renderError(ctx, err)
		}
	}
	w, err := watch.New(watch.Config{
		BaseDir: s.project.Dir,
		Exclude: []string{s.absTargetDir()},
		Logger:  s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Info("Files changed, packaging again", "count", len(changed))
			run(ctx)
			return nil
		},
	})
	if err != nil {
		return err
	}

	run(ctx)
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Watching "+s.project.Dir+" (Ctrl+C to stop)"))
	return w.Run(ctx)
}
