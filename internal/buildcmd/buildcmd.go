// SPDX-License-Identifier: MPL-2.0

// Package buildcmd resolves the build command of a project into an argument vector. The
// command is never run; natpack only reports it.
package buildcmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/natpack/natpack/pkg/defaults"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// Origins of a resolved command.
const (
	FromProject = "project"
	FromProfile = "profile"
)

// ErrNoCommand is returned when neither the project nor the profile names a command.
var ErrNoCommand = errors.New("no build command configured")

// Command is a resolved build command.
type Command struct {
	// Line is the command as configured.
	Line string
	// Args is Line split into words, with parameters expanded.
	Args []string
	// Origin is FromProject or FromProfile.
	Origin string
	// Profile is the identifier of the profile consulted.
	Profile string
}

// Resolve picks the project's command, falling back to the profile's default, and splits
// it into words. env looks up parameters; nil expands every parameter to "".
func Resolve(projectCommand string, profile *defaults.Document, env func(string) string) (*Command, error) {
	if profile == nil {
		profile = defaults.None()
	}
	cmd := &Command{Line: strings.TrimSpace(projectCommand), Origin: FromProject, Profile: profile.Identifier}
	if cmd.Line == "" {
		cmd.Line = strings.TrimSpace(profile.BuildCommand)
		cmd.Origin = FromProfile
	}
	if cmd.Line == "" {
		return nil, fmt.Errorf("%w (profile %q)", ErrNoCommand, profile.Identifier)
	}

	if _, err := syntax.NewParser().Parse(strings.NewReader(cmd.Line), "build"); err != nil {
		return nil, fmt.Errorf("invalid build command %q: %w", cmd.Line, err)
	}
	if env == nil {
		env = func(string) string { return "" }
	}
	args, err := shell.Fields(cmd.Line, env)
	if err != nil {
		return nil, fmt.Errorf("failed to expand build command %q: %w", cmd.Line, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %q expands to nothing", ErrNoCommand, cmd.Line)
	}
	cmd.Args = args
	return cmd, nil
}

// String renders Args as a shell-quoted line.
func (c *Command) String() string {
	quoted := make([]string, len(c.Args))
	for i, arg := range c.Args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			// Only unprintable bytes fail; show them with Go escapes.
			q = fmt.Sprintf("%q", arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
