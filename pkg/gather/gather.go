// SPDX-License-Identifier: MPL-2.0

// Package gather maps descriptor trees to the archive folders their files are packaged
// under.
package gather

import (
	"path/filepath"
	"strings"

	"github.com/natpack/natpack/pkg/source"
)

// Fixed archive folders per kind.
const (
	IncludeDir = "include"
	LibDir     = "lib"
	BinDir     = "bin"
)

type (
	// Roots are the top-level descriptor collections of a packaging run.
	Roots struct {
		Sources     []source.Descriptor
		HeaderFiles []*source.HeaderFile
		DynamicLibs []*source.DynamicLib
		StaticLibs  []*source.StaticLib
		Executables []*source.Executable
	}

	// Destination is a folder to scan and the archive prefix its matches are stored under.
	Destination struct {
		// Source is the descriptor the destination was computed for.
		Source source.Descriptor
		// Path is the folder to scan: the descriptor's own path or the one inherited from
		// the enclosing descriptor.
		Path string
		// Pattern is the file glob; empty matches everything.
		Pattern string
		// Arch is the resolved architecture label, possibly inherited.
		Arch string
		// Prefix is the archive folder, "" or ending in "/".
		Prefix string
	}

	destKey struct {
		path, pattern, prefix string
	}

	// gatherer carries the path and architecture inherited from enclosing descriptors.
	gatherer struct {
		path  string
		arch  string
		found *[]Destination
		seen  map[destKey]struct{}
	}
)

// Gather walks the roots in the order sources, header files, dynamic libraries, static
// libraries, executables. Nested collections are walked before the descriptor that owns
// them. Destinations that would scan the same folder with the same pattern into the same
// prefix are reported once.
func Gather(r Roots) ([]Destination, error) {
	found := []Destination{}
	g := &gatherer{found: &found, seen: map[destKey]struct{}{}}
	v := g.visitor()

	if err := source.ApplyAll(v, r.Sources); err != nil {
		return nil, err
	}
	if err := source.ApplyAll(v, r.HeaderFiles); err != nil {
		return nil, err
	}
	if err := source.ApplyAll(v, r.DynamicLibs); err != nil {
		return nil, err
	}
	if err := source.ApplyAll(v, r.StaticLibs); err != nil {
		return nil, err
	}
	if err := source.ApplyAll(v, r.Executables); err != nil {
		return nil, err
	}
	return found, nil
}

// Prefix returns the archive prefix for a resolved label ("", an arch, "include",
// "lib-x64", ...) and destination hint.
func Prefix(label, dest string) string {
	var sb strings.Builder
	if label != "" {
		sb.WriteString(label)
		sb.WriteByte('/')
	}
	if dest = strings.Trim(filepath.ToSlash(dest), "/"); dest != "" {
		sb.WriteString(dest)
		sb.WriteByte('/')
	}
	return sb.String()
}

func archSuffix(arch string) string {
	if arch == "" {
		return ""
	}
	return "-" + arch
}

func (g *gatherer) pathOf(d source.Descriptor) string {
	if p := d.Base().Path; p != "" {
		return p
	}
	return g.path
}

func (g *gatherer) archOf(a source.Arch) string {
	if arch := a.ArchBase().Arch; arch != "" {
		return arch
	}
	return g.arch
}

func (g *gatherer) store(d source.Descriptor, arch, label string) {
	dst := Destination{
		Source:  d,
		Path:    g.pathOf(d),
		Pattern: d.Base().Pattern,
		Arch:    arch,
		Prefix:  Prefix(label, d.Base().Dest),
	}
	key := destKey{path: dst.Path, pattern: dst.Pattern, prefix: dst.Prefix}
	if _, dup := g.seen[key]; dup {
		return
	}
	g.seen[key] = struct{}{}
	*g.found = append(*g.found, dst)
}

// child returns a gatherer for the collections nested in parent.
func (g *gatherer) child(parent source.Arch) *source.Visitor {
	nested := &gatherer{
		path:  g.pathOf(parent),
		arch:  g.archOf(parent),
		found: g.found,
		seen:  g.seen,
	}
	return nested.visitor()
}

func (g *gatherer) visitor() *source.Visitor {
	v := &source.Visitor{}
	v.Source = func(d source.Descriptor) error {
		g.store(d, "", "")
		return nil
	}
	v.ArchSource = func(a source.Arch) error {
		arch := g.archOf(a)
		g.store(a, arch, arch)
		return nil
	}
	v.HeaderFile = func(h *source.HeaderFile) error {
		g.store(h, "", IncludeDir)
		return nil
	}
	v.StaticLib = func(s *source.StaticLib) error {
		if err := source.ApplyAll(g.child(s), s.Headers()); err != nil {
			return err
		}
		arch := g.archOf(s)
		g.store(s, arch, LibDir+archSuffix(arch))
		return nil
	}
	v.DynamicLib = func(d *source.DynamicLib) error {
		nested := g.child(d)
		if err := source.ApplyAll(nested, d.Headers()); err != nil {
			return err
		}
		if err := source.ApplyAll(nested, d.Implibs()); err != nil {
			return err
		}
		arch := g.archOf(d)
		g.store(d, arch, BinDir+archSuffix(arch))
		return nil
	}
	v.Executable = func(e *source.Executable) error {
		nested := g.child(e)
		if err := source.ApplyAll(nested, e.Headers()); err != nil {
			return err
		}
		if err := source.ApplyAll(nested, e.Libraries()); err != nil {
			return err
		}
		arch := g.archOf(e)
		g.store(e, arch, BinDir+archSuffix(arch))
		return nil
	}
	return v
}
