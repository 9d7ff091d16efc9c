// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/natpack/natpack/internal/issue"
	"github.com/natpack/natpack/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want none", path)
	}
	want := DefaultConfig()
	if cfg.TargetDir != want.TargetDir || cfg.DependencyDir != want.DependencyDir || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeConfig(t, dir, `
default_profile: "linux"
profile_paths: ["/opt/profiles", "./profiles"]
target_dir: "build"
ui: verbose: true
`)

	cfg, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatal(err)
	}
	if path != file {
		t.Errorf("resolved path = %q, want %q", path, file)
	}
	if cfg.DefaultProfile != "linux" || cfg.TargetDir != "build" || !cfg.UI.Verbose {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !slices.Equal(cfg.ProfilePaths, []string{"/opt/profiles", "./profiles"}) {
		t.Errorf("profile_paths = %v", cfg.ProfilePaths)
	}
	if cfg.DependencyDir != DefaultDependencyDir || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("unset keys must keep their defaults: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", `colour: "red"`},
		{"bad scheme", `ui: color_scheme: "sepia"`},
		{"wrong type", `target_dir: 3`},
		{"syntax", `target_dir: `},
		{"blank profile path", `profile_paths: ["  "]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			file := writeConfig(t, t.TempDir(), tt.content)
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: file})
			if err == nil {
				t.Fatal("expected an error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId || ae.Resource != file {
				t.Errorf("issue %d resource %q", ae.Issue, ae.Resource)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		DefaultProfile: "windows",
		ProfilePaths:   []string{`C:\profiles`},
		TargetDir:      "out",
		DependencyDir:  "deps",
		UI:             UIConfig{ColorScheme: ColorSchemeDark, Verbose: true},
	}
	dir := t.TempDir()
	writeConfig(t, dir, GenerateCUE(cfg))

	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated file does not load: %v\n%s", err, GenerateCUE(cfg))
	}
	if got.DefaultProfile != cfg.DefaultProfile || got.TargetDir != cfg.TargetDir ||
		got.DependencyDir != cfg.DependencyDir || got.UI != cfg.UI ||
		!slices.Equal(got.ProfilePaths, cfg.ProfilePaths) {
		t.Errorf("round trip: got %+v, want %+v", got, cfg)
	}
}

// Not parallel: uses the package-level directory override.
func TestSaveAndProfileDirs(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ProfilePaths = []string{"/a"}
	dirs := ProfileDirs(cfg)
	if !slices.Equal(dirs, []string{"/a", filepath.Join(dir, ProfilesDirName)}) {
		t.Errorf("ProfileDirs = %v", dirs)
	}
}

// Not parallel: changes the home and XDG variables.
func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on Linux")
	}
	home := t.TempDir()
	t.Cleanup(testutil.SetHomeDir(t, home))
	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", ""))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}

	xdg := t.TempDir()
	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", xdg))
	if dir, _ := ConfigDir(); dir != filepath.Join(xdg, AppName) {
		t.Errorf("ConfigDir() = %q, want it below XDG_CONFIG_HOME", dir)
	}
}

func TestColorScheme(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if ok, _ := cs.IsValid(); !ok {
			t.Errorf("%s should be valid", cs)
		}
	}
	ok, errs := ColorScheme("sepia").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("sepia: ok %v errs %v", ok, errs)
	}
	if ColorSchemeLight.GlamourStyle() != "light" || ColorSchemeAuto.GlamourStyle() != "auto" {
		t.Error("unexpected glamour style mapping")
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TargetDir = "   "
	ok, errs := cfg.IsValid()
	if ok || !errors.Is(errs[0], ErrInvalidConfig) {
		t.Errorf("whitespace target_dir: ok %v errs %v", ok, errs)
	}
	if ok, _ := DefaultConfig().IsValid(); !ok {
		t.Error("defaults must be valid")
	}
}
