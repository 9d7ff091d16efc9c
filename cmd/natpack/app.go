// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natpack/natpack/internal/config"
	"github.com/natpack/natpack/internal/issue"
	"github.com/natpack/natpack/internal/project"
	"github.com/natpack/natpack/pkg/defaults"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. All Cobra handlers receive an App
	// and read global flag values from it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
		flags  globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		verbose    bool
		configPath string
		projectDir string
		profile    string
	}

	// session holds what a project command needs, loaded once per invocation.
	session struct {
		cfg     *config.Config
		project *project.Project
		profile *defaults.Document
		logger  *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		flags:  globalFlags{projectDir: "."},
	}, nil
}

func (app *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.flags.configPath})
}

func (app *App) verbose(cfg *config.Config) bool {
	return app.flags.verbose || (cfg != nil && cfg.UI.Verbose)
}

func (app *App) newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(app.stderr, log.Options{Prefix: config.AppName})
	if app.verbose(cfg) {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// registry searches the configured profile folders before the built-in profiles.
func (app *App) registry(cfg *config.Config) *defaults.Registry {
	return defaults.NewRegistry(config.ProfileDirs(cfg)...)
}

// lookupProfile resolves name, falling back to the configured default profile.
func (app *App) lookupProfile(cfg *config.Config, name string) (*defaults.Document, error) {
	if name == "" {
		name = cfg.DefaultProfile
	}
	doc, err := app.registry(cfg).Lookup(name)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load defaults profile " + name).
			WithSuggestion("Run 'natpack profile list' to see the available profiles").
			WithIssue(issue.ProfileInvalidId).
			Wrap(err).
			BuildError()
	}
	return doc, nil
}

// newSession loads the configuration, the project file and its defaults profile. The
// --profile flag wins over the project's defaults field.
func (app *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	path, err := project.Find(app.flags.projectDir)
	if err != nil {
		return nil, err
	}
	proj, err := project.Load(path)
	if err != nil {
		return nil, err
	}

	name := app.flags.profile
	if name == "" {
		name = proj.Defaults
	}
	profile, err := app.lookupProfile(cfg, name)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, project: proj, profile: profile, logger: app.newLogger(cfg)}
	s.logger.Debug("Loaded project", "path", path, "profile", profile.Identifier)
	return s, nil
}

// targetDir is the project's build output folder, relative to the project folder.
func (s *session) targetDir() string {
	if s.project.TargetDir != "" {
		return filepath.FromSlash(s.project.TargetDir)
	}
	return filepath.FromSlash(s.cfg.TargetDir)
}

// absTargetDir resolves targetDir against the project folder.
func (s *session) absTargetDir() string {
	dir := s.targetDir()
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(s.project.Dir, dir)
}

// runE adapts a handler so that failures are rendered once, here, and surface to fang
// as an exit code.
func (app *App) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		app.renderError(cmd.Context(), err)
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: 1}
	}
}

// renderError prints err and, in verbose mode, the help page of its issue.
func (app *App) renderError(ctx context.Context, err error) {
	cfg, cfgErr := app.loadConfig(ctx)
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}
	verbose := app.verbose(cfg)
	fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if !verbose || !errors.As(err, &ae) || ae.Issue == 0 {
		return
	}
	page := issue.Get(ae.Issue)
	if page == nil {
		return
	}
	if rendered, renderErr := page.Render(cfg.UI.ColorScheme.GlamourStyle()); renderErr == nil {
		fmt.Fprint(app.stderr, rendered)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors use their
// Format method; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
