// SPDX-License-Identifier: MPL-2.0

package source

import "fmt"

// Visitor dispatches on the kind of a descriptor. Each hook is optional: an unset hook
// forwards to the parent kind's Visit method, and an unset Source hook fails with
// ErrUnsupportedVariant. A hook that wants the parent behaviour after its own work calls
// the parent-level Visit method explicitly, for example an Executable hook ending with
// `return v.VisitArchSource(e)`.
type Visitor struct {
	Source     func(d Descriptor) error
	ArchSource func(a Arch) error
	HeaderFile func(h *HeaderFile) error
	StaticLib  func(s *StaticLib) error
	DynamicLib func(d *DynamicLib) error
	Executable func(e *Executable) error
}

// VisitSource runs the Source hook. It is the root of every chain.
func (v *Visitor) VisitSource(d Descriptor) error {
	if v.Source == nil {
		return &UnsupportedVariantError{Kind: d.Kind()}
	}
	return v.Source(d)
}

// VisitArchSource runs the ArchSource hook, or VisitSource when unset.
func (v *Visitor) VisitArchSource(a Arch) error {
	if v.ArchSource == nil {
		return v.VisitSource(a)
	}
	return v.ArchSource(a)
}

// VisitHeaderFile runs the HeaderFile hook, or VisitSource when unset.
func (v *Visitor) VisitHeaderFile(h *HeaderFile) error {
	if v.HeaderFile == nil {
		return v.VisitSource(h)
	}
	return v.HeaderFile(h)
}

// VisitStaticLib runs the StaticLib hook, or VisitArchSource when unset.
func (v *Visitor) VisitStaticLib(s *StaticLib) error {
	if v.StaticLib == nil {
		return v.VisitArchSource(s)
	}
	return v.StaticLib(s)
}

// VisitDynamicLib runs the DynamicLib hook, or VisitArchSource when unset.
func (v *Visitor) VisitDynamicLib(d *DynamicLib) error {
	if v.DynamicLib == nil {
		return v.VisitArchSource(d)
	}
	return v.DynamicLib(d)
}

// VisitExecutable runs the Executable hook, or VisitArchSource when unset.
func (v *Visitor) VisitExecutable(e *Executable) error {
	if v.Executable == nil {
		return v.VisitArchSource(e)
	}
	return v.Executable(e)
}

// Apply dispatches d to the most specific hook of v.
func Apply(v *Visitor, d Descriptor) error {
	if d == nil || d.isNil() {
		return ErrNilDescriptor
	}
	return d.accept(v)
}

// ApplyAll dispatches every element of items in order and stops at the first error.
// A nil collection is a no-op.
func ApplyAll[T Descriptor](v *Visitor, items []T) error {
	for i, item := range items {
		if err := Apply(v, item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}
