// SPDX-License-Identifier: MPL-2.0

package defaults

import (
	"github.com/natpack/natpack/pkg/source"
)

type (
	// SourceDefaults holds the path and pattern shared by every kind of default.
	SourceDefaults struct {
		Path    string
		Pattern string
	}

	// ArchSourceDefaults adds an architecture label. Used on its own it describes a
	// generic library entry of an executable.
	ArchSourceDefaults struct {
		SourceDefaults
		Arch string
	}

	// HeaderFileDefaults describes header files.
	HeaderFileDefaults struct {
		SourceDefaults
	}

	// StaticLibDefaults describes static libraries.
	StaticLibDefaults struct {
		ArchSourceDefaults
		Headers []*HeaderFileDefaults
	}

	// DynamicLibDefaults describes dynamic libraries.
	DynamicLibDefaults struct {
		ArchSourceDefaults
		Headers []*HeaderFileDefaults
		Implibs []*StaticLibDefaults
	}

	// ExecutableDefaults describes executables.
	ExecutableDefaults struct {
		ArchSourceDefaults
		Headers   []*HeaderFileDefaults
		Libraries []LibraryDefaults
	}

	// LibraryDefaults is a library entry of ExecutableDefaults: an *ArchSourceDefaults,
	// *StaticLibDefaults or *DynamicLibDefaults.
	LibraryDefaults interface {
		// NewLibrary creates a descriptor of the matching kind with these defaults applied.
		NewLibrary() source.Arch

		libraryType() string
		saver
	}
)

// fill sets *dst to the first non-empty candidate when *dst is unset.
func fill(dst *string, candidates ...string) {
	if *dst != "" {
		return
	}
	for _, c := range candidates {
		if c != "" {
			*dst = c
			return
		}
	}
}

func (s *SourceDefaults) apply(dst *source.Source, inherited string) {
	fill(&dst.Path, inherited, s.Path)
	fill(&dst.Pattern, s.Pattern)
}

func (a *ArchSourceDefaults) apply(dst *source.ArchSource, inherited string) {
	a.SourceDefaults.apply(&dst.Source, inherited)
	fill(&dst.Arch, a.Arch)
}

// NewLibrary returns a generic ArchSource with these defaults applied.
func (a *ArchSourceDefaults) NewLibrary() source.Arch {
	lib := &source.ArchSource{}
	a.apply(lib, "")
	return lib
}

func (a *ArchSourceDefaults) libraryType() string { return "" }

// Create returns a header file descriptor with these defaults applied.
func (h *HeaderFileDefaults) Create() *source.HeaderFile {
	hdr := &source.HeaderFile{}
	h.apply(&hdr.Source, "")
	return hdr
}

func (s *StaticLibDefaults) applyLocal(dst *source.StaticLib, inherited string) {
	s.ArchSourceDefaults.apply(&dst.ArchSource, inherited)
	if dst.Headers() == nil && !dst.HeadersOmitted() {
		dst.SetHeaders(createHeaders(s.Headers))
	}
}

// Create returns a static library descriptor with these defaults applied, including any
// listed headers.
func (s *StaticLibDefaults) Create() *source.StaticLib {
	lib := &source.StaticLib{}
	s.applyLocal(lib, "")
	return lib
}

// NewLibrary implements LibraryDefaults.
func (s *StaticLibDefaults) NewLibrary() source.Arch { return s.Create() }

func (s *StaticLibDefaults) libraryType() string { return staticLibKey }

func (d *DynamicLibDefaults) applyLocal(dst *source.DynamicLib, inherited string) {
	d.ArchSourceDefaults.apply(&dst.ArchSource, inherited)
	if dst.Headers() == nil && !dst.HeadersOmitted() {
		dst.SetHeaders(createHeaders(d.Headers))
	}
	if dst.Implibs() == nil && !dst.ImplibsOmitted() && d.Implibs != nil {
		implibs := make([]*source.StaticLib, len(d.Implibs))
		for i, implib := range d.Implibs {
			implibs[i] = implib.Create()
		}
		dst.SetImplibs(implibs)
	}
}

// Create returns a dynamic library descriptor with these defaults applied, including any
// listed headers and import libraries.
func (d *DynamicLibDefaults) Create() *source.DynamicLib {
	lib := &source.DynamicLib{}
	d.applyLocal(lib, "")
	return lib
}

// NewLibrary implements LibraryDefaults.
func (d *DynamicLibDefaults) NewLibrary() source.Arch { return d.Create() }

func (d *DynamicLibDefaults) libraryType() string { return dynamicLibKey }

func (e *ExecutableDefaults) applyLocal(dst *source.Executable, inherited string) {
	e.ArchSourceDefaults.apply(&dst.ArchSource, inherited)
	if dst.Headers() == nil && !dst.HeadersOmitted() {
		dst.SetHeaders(createHeaders(e.Headers))
	}
	if dst.Libraries() == nil && !dst.LibrariesOmitted() && e.Libraries != nil {
		libraries := make([]source.Arch, len(e.Libraries))
		for i, lib := range e.Libraries {
			libraries[i] = lib.NewLibrary()
		}
		dst.SetLibraries(libraries)
	}
}

// Create returns an executable descriptor with these defaults applied, including any
// listed headers and libraries.
func (e *ExecutableDefaults) Create() *source.Executable {
	exe := &source.Executable{}
	e.applyLocal(exe, "")
	return exe
}

func createHeaders(defaults []*HeaderFileDefaults) []*source.HeaderFile {
	if defaults == nil {
		return nil
	}
	headers := make([]*source.HeaderFile, len(defaults))
	for i, h := range defaults {
		headers[i] = h.Create()
	}
	return headers
}
