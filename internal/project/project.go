// SPDX-License-Identifier: MPL-2.0

package project

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natpack/natpack/internal/cueutil"
	"github.com/natpack/natpack/internal/issue"
	"github.com/natpack/natpack/pkg/gather"
	"github.com/natpack/natpack/pkg/merge"
	"github.com/natpack/natpack/pkg/source"
)

// FileName is the project file looked up in the project folder.
const FileName = "natpack.cue"

// Library types of an executable.
const (
	LibraryArch    = "arch"
	LibraryStatic  = "static"
	LibraryDynamic = "dynamic"
)

//go:embed project_schema.cue
var projectSchema []byte

type (
	// Project is a decoded natpack.cue. Absent lists decode to nil, explicitly empty ones
	// to empty slices; the difference decides whether defaults synthesize entries.
	Project struct {
		ArtifactID string `json:"artifact_id"`
		TargetDir  string `json:"target_dir,omitempty"`
		// Defaults names the defaults profile.
		Defaults string `json:"defaults,omitempty"`
		// Skip turns package and unpack runs into no-ops.
		Skip bool `json:"skip,omitempty"`
		// Build overrides the profile's build command.
		Build string `json:"build,omitempty"`

		Sources      []Source     `json:"sources,omitempty"`
		Headers      []Source     `json:"headers,omitempty"`
		StaticLibs   []StaticLib  `json:"static_libs,omitempty"`
		DynamicLibs  []DynamicLib `json:"dynamic_libs,omitempty"`
		Executables  []Executable `json:"executables,omitempty"`
		Dependencies []Dependency `json:"dependencies,omitempty"`

		// Dir is the folder holding the project file.
		Dir string `json:"-"`
	}

	Source struct {
		Path    string `json:"path,omitempty"`
		Pattern string `json:"pattern,omitempty"`
		Dest    string `json:"dest,omitempty"`
	}

	StaticLib struct {
		Path    string   `json:"path,omitempty"`
		Pattern string   `json:"pattern,omitempty"`
		Dest    string   `json:"dest,omitempty"`
		Arch    string   `json:"arch,omitempty"`
		Headers []Source `json:"headers,omitempty"`
	}

	DynamicLib struct {
		Path    string      `json:"path,omitempty"`
		Pattern string      `json:"pattern,omitempty"`
		Dest    string      `json:"dest,omitempty"`
		Arch    string      `json:"arch,omitempty"`
		Headers []Source    `json:"headers,omitempty"`
		Implibs []StaticLib `json:"implibs,omitempty"`
	}

	// Library is a library an executable needs. Headers and Implibs only apply to the
	// types that carry them.
	Library struct {
		Type    string      `json:"type"`
		Path    string      `json:"path,omitempty"`
		Pattern string      `json:"pattern,omitempty"`
		Dest    string      `json:"dest,omitempty"`
		Arch    string      `json:"arch,omitempty"`
		Headers []Source    `json:"headers,omitempty"`
		Implibs []StaticLib `json:"implibs,omitempty"`
	}

	Executable struct {
		Path      string    `json:"path,omitempty"`
		Pattern   string    `json:"pattern,omitempty"`
		Dest      string    `json:"dest,omitempty"`
		Arch      string    `json:"arch,omitempty"`
		Headers   []Source  `json:"headers,omitempty"`
		Libraries []Library `json:"libraries,omitempty"`
	}

	// Dependency is a resolved dependency archive. File is relative to the project folder
	// unless absolute.
	Dependency struct {
		Group      string `json:"group"`
		Artifact   string `json:"artifact"`
		Version    string `json:"version"`
		Classifier string `json:"classifier,omitempty"`
		Kind       string `json:"kind"`
		File       string `json:"file"`
	}
)

// Find returns the project file path in dir.
func Find(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", issue.NewErrorContext().
				WithOperation("find project file").
				WithResource(path).
				WithSuggestion("Run natpack from the project folder or pass --project").
				WithIssue(issue.ProjectFileNotFoundId).
				Wrap(err).
				BuildError()
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return path, nil
}

// Load reads and parses the project file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file at %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes project file content. path names the file in errors and anchors relative
// paths.
func Parse(data []byte, path string) (*Project, error) {
	result, err := cueutil.ParseAndDecode[Project](projectSchema, data, "#Project", cueutil.WithFilename(path))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse project file").
			WithResource(path).
			WithSuggestion("Check the field names and types against the natpack.cue reference").
			WithIssue(issue.ProjectFileInvalidId).
			Wrap(err).
			BuildError()
	}
	p := result.Value
	p.Dir = filepath.Dir(path)
	return p, nil
}

// Roots converts the configured collections into descriptors. Paths are kept as written;
// the packager resolves them against Dir.
func (p *Project) Roots() gather.Roots {
	var roots gather.Roots
	if p.Sources != nil {
		roots.Sources = make([]source.Descriptor, len(p.Sources))
		for i, s := range p.Sources {
			roots.Sources[i] = s.descriptor()
		}
	}
	roots.HeaderFiles = convert(p.Headers, Source.header)
	roots.StaticLibs = convert(p.StaticLibs, StaticLib.descriptor)
	roots.DynamicLibs = convert(p.DynamicLibs, DynamicLib.descriptor)
	roots.Executables = convert(p.Executables, Executable.descriptor)
	return roots
}

// Artifacts converts the dependencies, resolving their files against Dir.
func (p *Project) Artifacts() []merge.Artifact {
	out := make([]merge.Artifact, len(p.Dependencies))
	for i, d := range p.Dependencies {
		file := filepath.FromSlash(d.File)
		if !filepath.IsAbs(file) {
			file = filepath.Join(p.Dir, file)
		}
		out[i] = merge.Artifact{
			GroupID:    d.Group,
			ArtifactID: d.Artifact,
			Version:    d.Version,
			Classifier: d.Classifier,
			Kind:       merge.Kind(d.Kind),
			File:       file,
		}
	}
	return out
}

func convert[S any, D any](items []S, conv func(S) D) []D {
	if items == nil {
		return nil
	}
	out := make([]D, len(items))
	for i, item := range items {
		out[i] = conv(item)
	}
	return out
}

func (s Source) base() source.Source {
	return source.Source{Path: filepath.FromSlash(s.Path), Pattern: s.Pattern, Dest: s.Dest}
}

func (s Source) descriptor() source.Descriptor {
	b := s.base()
	return &b
}

func (s Source) header() *source.HeaderFile {
	return &source.HeaderFile{Source: s.base()}
}

func archSource(path, pattern, dest, arch string) source.ArchSource {
	return source.ArchSource{
		Source: Source{Path: path, Pattern: pattern, Dest: dest}.base(),
		Arch:   arch,
	}
}

func (s StaticLib) descriptor() *source.StaticLib {
	lib := &source.StaticLib{ArchSource: archSource(s.Path, s.Pattern, s.Dest, s.Arch)}
	lib.SetHeaders(convert(s.Headers, Source.header))
	lib.CompactCollections()
	return lib
}

func (d DynamicLib) descriptor() *source.DynamicLib {
	lib := &source.DynamicLib{ArchSource: archSource(d.Path, d.Pattern, d.Dest, d.Arch)}
	lib.SetHeaders(convert(d.Headers, Source.header))
	lib.SetImplibs(convert(d.Implibs, StaticLib.descriptor))
	lib.CompactCollections()
	return lib
}

func (l Library) descriptor() source.Arch {
	switch l.Type {
	case LibraryStatic:
		return StaticLib{Path: l.Path, Pattern: l.Pattern, Dest: l.Dest, Arch: l.Arch, Headers: l.Headers}.descriptor()
	case LibraryDynamic:
		return DynamicLib{
			Path: l.Path, Pattern: l.Pattern, Dest: l.Dest, Arch: l.Arch,
			Headers: l.Headers, Implibs: l.Implibs,
		}.descriptor()
	default:
		a := archSource(l.Path, l.Pattern, l.Dest, l.Arch)
		return &a
	}
}

func (e Executable) descriptor() *source.Executable {
	exe := &source.Executable{ArchSource: archSource(e.Path, e.Pattern, e.Dest, e.Arch)}
	exe.SetHeaders(convert(e.Headers, Source.header))
	exe.SetLibraries(convert(e.Libraries, Library.descriptor))
	exe.CompactCollections()
	return exe
}
