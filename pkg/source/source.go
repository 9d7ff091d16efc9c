// SPDX-License-Identifier: MPL-2.0

package source

import (
	"errors"
	"fmt"
	"slices"
)

// Descriptor kinds. The set is closed.
const (
	KindSource Kind = iota + 1
	KindArchSource
	KindHeaderFile
	KindStaticLib
	KindDynamicLib
	KindExecutable
)

var (
	// ErrUnsupportedVariant is returned when a visitor has no hook able to handle a kind.
	ErrUnsupportedVariant = errors.New("unsupported descriptor variant")

	// ErrNilDescriptor is returned when a nil descriptor is dispatched.
	ErrNilDescriptor = errors.New("nil descriptor")
)

type (
	// Kind identifies the concrete descriptor variant.
	Kind int

	// Descriptor is implemented by the six descriptor kinds of this package only.
	Descriptor interface {
		// Kind reports the exact variant.
		Kind() Kind
		// Base returns the attributes shared by every kind. The returned pointer aliases
		// the descriptor, so writes through it are visible on the descriptor.
		Base() *Source

		accept(v *Visitor) error
		isNil() bool
	}

	// Arch is a descriptor carrying an architecture label: ArchSource, StaticLib,
	// DynamicLib or Executable. Executables list their libraries as Arch values.
	Arch interface {
		Descriptor
		ArchBase() *ArchSource
	}

	// Source is the plain descriptor: a folder, a file glob and a destination hint.
	Source struct {
		Path    string
		Pattern string
		Dest    string
	}

	// ArchSource is a Source qualified by an architecture label.
	ArchSource struct {
		Source
		Arch string
	}

	// HeaderFile selects header files.
	HeaderFile struct {
		Source
	}

	// StaticLib selects static libraries and the headers that describe them.
	StaticLib struct {
		ArchSource
		headers []*HeaderFile

		headersOmitted bool
	}

	// DynamicLib selects dynamic libraries, their headers and their import libraries.
	DynamicLib struct {
		ArchSource
		headers []*HeaderFile
		implibs []*StaticLib

		headersOmitted bool
		implibsOmitted bool
	}

	// Executable selects executables, their headers and the libraries they need at
	// runtime.
	Executable struct {
		ArchSource
		headers   []*HeaderFile
		libraries []Arch

		headersOmitted   bool
		librariesOmitted bool
	}

	// UnsupportedVariantError names the kind that could not be visited.
	UnsupportedVariantError struct {
		Kind Kind
	}
)

// String returns the type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "Source"
	case KindArchSource:
		return "ArchSource"
	case KindHeaderFile:
		return "HeaderFile"
	case KindStaticLib:
		return "StaticLib"
	case KindDynamicLib:
		return "DynamicLib"
	case KindExecutable:
		return "Executable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Parent returns the kind this kind specialises, or 0 for KindSource.
func (k Kind) Parent() Kind {
	switch k {
	case KindArchSource, KindHeaderFile:
		return KindSource
	case KindStaticLib, KindDynamicLib, KindExecutable:
		return KindArchSource
	default:
		return 0
	}
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedVariant, e.Kind)
}

func (e *UnsupportedVariantError) Unwrap() error {
	return ErrUnsupportedVariant
}

// --- Source ---

// Kind implements Descriptor.
func (s *Source) Kind() Kind { return KindSource }

// Base implements Descriptor.
func (s *Source) Base() *Source { return s }

func (s *Source) accept(v *Visitor) error { return v.VisitSource(s) }

func (s *Source) isNil() bool { return s == nil }

// --- ArchSource ---

// Kind implements Descriptor.
func (a *ArchSource) Kind() Kind { return KindArchSource }

// ArchBase implements Arch.
func (a *ArchSource) ArchBase() *ArchSource { return a }

func (a *ArchSource) accept(v *Visitor) error { return v.VisitArchSource(a) }

func (a *ArchSource) isNil() bool { return a == nil }

// --- HeaderFile ---

// Kind implements Descriptor.
func (h *HeaderFile) Kind() Kind { return KindHeaderFile }

func (h *HeaderFile) accept(v *Visitor) error { return v.VisitHeaderFile(h) }

func (h *HeaderFile) isNil() bool { return h == nil }

// --- StaticLib ---

// Kind implements Descriptor.
func (s *StaticLib) Kind() Kind { return KindStaticLib }

// Headers returns a copy of the header collection.
func (s *StaticLib) Headers() []*HeaderFile { return slices.Clone(s.headers) }

// SetHeaders stores a copy of headers.
func (s *StaticLib) SetHeaders(headers []*HeaderFile) {
	s.headers = slices.Clone(headers)
	s.headersOmitted = false
}

// HeadersOmitted reports whether an explicitly empty header collection was dropped by
// CompactCollections.
func (s *StaticLib) HeadersOmitted() bool { return s.headersOmitted }

// CompactCollections replaces explicitly empty nested collections with nil, remembering
// that the caller asked for none.
func (s *StaticLib) CompactCollections() {
	s.headers, s.headersOmitted = compact(s.headers, s.headersOmitted)
}

func (s *StaticLib) accept(v *Visitor) error { return v.VisitStaticLib(s) }

func (s *StaticLib) isNil() bool { return s == nil }

// --- DynamicLib ---

// Kind implements Descriptor.
func (d *DynamicLib) Kind() Kind { return KindDynamicLib }

// Headers returns a copy of the header collection.
func (d *DynamicLib) Headers() []*HeaderFile { return slices.Clone(d.headers) }

// SetHeaders stores a copy of headers.
func (d *DynamicLib) SetHeaders(headers []*HeaderFile) {
	d.headers = slices.Clone(headers)
	d.headersOmitted = false
}

// Implibs returns a copy of the import library collection.
func (d *DynamicLib) Implibs() []*StaticLib { return slices.Clone(d.implibs) }

// SetImplibs stores a copy of implibs.
func (d *DynamicLib) SetImplibs(implibs []*StaticLib) {
	d.implibs = slices.Clone(implibs)
	d.implibsOmitted = false
}

// HeadersOmitted reports whether an explicitly empty header collection was dropped by
// CompactCollections.
func (d *DynamicLib) HeadersOmitted() bool { return d.headersOmitted }

// ImplibsOmitted reports whether an explicitly empty import library collection was dropped
// by CompactCollections.
func (d *DynamicLib) ImplibsOmitted() bool { return d.implibsOmitted }

// CompactCollections replaces explicitly empty nested collections with nil, remembering
// that the caller asked for none.
func (d *DynamicLib) CompactCollections() {
	d.headers, d.headersOmitted = compact(d.headers, d.headersOmitted)
	d.implibs, d.implibsOmitted = compact(d.implibs, d.implibsOmitted)
}

func (d *DynamicLib) accept(v *Visitor) error { return v.VisitDynamicLib(d) }

func (d *DynamicLib) isNil() bool { return d == nil }

// --- Executable ---

// Kind implements Descriptor.
func (e *Executable) Kind() Kind { return KindExecutable }

// Headers returns a copy of the header collection.
func (e *Executable) Headers() []*HeaderFile { return slices.Clone(e.headers) }

// SetHeaders stores a copy of headers.
func (e *Executable) SetHeaders(headers []*HeaderFile) {
	e.headers = slices.Clone(headers)
	e.headersOmitted = false
}

// Libraries returns a copy of the library collection.
func (e *Executable) Libraries() []Arch { return slices.Clone(e.libraries) }

// SetLibraries stores a copy of libraries.
func (e *Executable) SetLibraries(libraries []Arch) {
	e.libraries = slices.Clone(libraries)
	e.librariesOmitted = false
}

// HeadersOmitted reports whether an explicitly empty header collection was dropped by
// CompactCollections.
func (e *Executable) HeadersOmitted() bool { return e.headersOmitted }

// LibrariesOmitted reports whether an explicitly empty library collection was dropped by
// CompactCollections.
func (e *Executable) LibrariesOmitted() bool { return e.librariesOmitted }

// CompactCollections replaces explicitly empty nested collections with nil, remembering
// that the caller asked for none.
func (e *Executable) CompactCollections() {
	e.headers, e.headersOmitted = compact(e.headers, e.headersOmitted)
	e.libraries, e.librariesOmitted = compact(e.libraries, e.librariesOmitted)
}

func (e *Executable) accept(v *Visitor) error { return v.VisitExecutable(e) }

func (e *Executable) isNil() bool { return e == nil }

func compact[T any](items []T, omitted bool) ([]T, bool) {
	if items != nil && len(items) == 0 {
		return nil, true
	}
	return items, omitted
}

// Descriptors converts a typed collection into a Descriptor collection, keeping nil as nil.
func Descriptors[T Descriptor](items []T) []Descriptor {
	if items == nil {
		return nil
	}
	out := make([]Descriptor, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
