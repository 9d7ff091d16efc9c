// SPDX-License-Identifier: MPL-2.0

package defaults

import (
	"github.com/magiconair/properties"

	"github.com/natpack/natpack/pkg/source"
)

// NoneIdentifier identifies the inert document returned for unknown profiles.
const NoneIdentifier = "none"

// Document is a complete defaults profile.
type Document struct {
	// Identifier names the profile. It may differ from the name it was looked up by when
	// the resource declares an identifier of its own.
	Identifier string

	// Ambient defaults, applied to every descriptor of the matching kind.
	HeaderFile HeaderFileDefaults
	StaticLib  StaticLibDefaults
	DynamicLib DynamicLibDefaults
	Executable ExecutableDefaults

	// Default entries, used to synthesize a whole collection the caller left unset. A nil
	// list means the profile synthesizes nothing for that collection.
	DefaultHeaderFiles []*HeaderFileDefaults
	DefaultStaticLibs  []*StaticLibDefaults
	DefaultDynamicLibs []*DynamicLibDefaults
	DefaultExecutables []*ExecutableDefaults

	// BuildCommand is the profile's default build command line, or "".
	BuildCommand string
}

// None returns the inert document: every default is absent.
func None() *Document {
	return &Document{Identifier: NoneIdentifier}
}

// Load builds a document from properties. The identifier key, when present, overrides
// identifier.
func Load(identifier string, p *properties.Properties) *Document {
	doc := &Document{Identifier: identifier}
	if id, ok := p.Get(identifierKey); ok {
		doc.Identifier = id
	}

	doc.DynamicLib.load(p, dynamicLibKey)
	if ids := getMultiple(p, dynamicLibKey); ids != nil {
		doc.DefaultDynamicLibs = make([]*DynamicLibDefaults, len(ids))
		for i, id := range ids {
			doc.DefaultDynamicLibs[i] = &DynamicLibDefaults{}
			doc.DefaultDynamicLibs[i].load(p, id)
		}
	}

	doc.Executable.load(p, executableKey)
	if ids := getMultiple(p, executableKey); ids != nil {
		doc.DefaultExecutables = make([]*ExecutableDefaults, len(ids))
		for i, id := range ids {
			doc.DefaultExecutables[i] = &ExecutableDefaults{}
			doc.DefaultExecutables[i].load(p, id)
		}
	}

	doc.StaticLib.load(p, staticLibKey)
	if ids := getMultiple(p, staticLibKey); ids != nil {
		doc.DefaultStaticLibs = make([]*StaticLibDefaults, len(ids))
		for i, id := range ids {
			doc.DefaultStaticLibs[i] = &StaticLibDefaults{}
			doc.DefaultStaticLibs[i].load(p, id)
		}
	}

	doc.HeaderFile.load(p, headerFileKey)
	if ids := getMultiple(p, headerFileKey); ids != nil {
		doc.DefaultHeaderFiles = make([]*HeaderFileDefaults, len(ids))
		for i, id := range ids {
			doc.DefaultHeaderFiles[i] = &HeaderFileDefaults{}
			doc.DefaultHeaderFiles[i].load(p, id)
		}
	}

	if cmd, ok := p.Get(buildCommandKey); ok {
		doc.BuildCommand = cmd
	}
	return doc
}

// Save writes the document to p in a form Load restores. Nested and default entries get
// synthetic identifiers.
func (d *Document) Save(p *properties.Properties) error {
	if err := set(p, identifierKey, d.Identifier); err != nil {
		return err
	}

	var counter int
	if err := d.DynamicLib.saveTo(p, dynamicLibKey, &counter); err != nil {
		return err
	}
	if err := d.Executable.saveTo(p, executableKey, &counter); err != nil {
		return err
	}
	if err := d.StaticLib.saveTo(p, staticLibKey, &counter); err != nil {
		return err
	}
	if err := d.HeaderFile.saveTo(p, headerFileKey, &counter); err != nil {
		return err
	}

	if err := saveMultiple(p, "", dynamicLibKey, d.DefaultDynamicLibs, &counter); err != nil {
		return err
	}
	if err := saveMultiple(p, "", executableKey, d.DefaultExecutables, &counter); err != nil {
		return err
	}
	if err := saveMultiple(p, "", staticLibKey, d.DefaultStaticLibs, &counter); err != nil {
		return err
	}
	if err := saveMultiple(p, "", headerFileKey, d.DefaultHeaderFiles, &counter); err != nil {
		return err
	}

	if d.BuildCommand != "" {
		return set(p, buildCommandKey, d.BuildCommand)
	}
	return nil
}

// ApplyTo fills the unset attributes of each descriptor, and of everything nested in it,
// from the document. Nested collections left nil are synthesized from the kind's listed
// entries; explicitly empty nested collections are compacted to nil.
func (d *Document) ApplyTo(items ...source.Descriptor) error {
	return source.ApplyAll(d.visitor(""), items)
}

// Apply is ApplyTo for a typed collection. A nil collection is a no-op.
func Apply[T source.Descriptor](d *Document, items []T) error {
	return source.ApplyAll(d.visitor(""), items)
}

// visitor returns the defaulting visitor. inherited is the resolved path of the enclosing
// descriptor; it fills a nested descriptor's path ahead of the ambient default.
func (d *Document) visitor(inherited string) *source.Visitor {
	v := &source.Visitor{}
	v.Source = func(source.Descriptor) error {
		return nil
	}
	v.ArchSource = func(a source.Arch) error {
		fill(&a.Base().Path, inherited)
		return v.VisitSource(a)
	}
	v.HeaderFile = func(h *source.HeaderFile) error {
		d.HeaderFile.apply(&h.Source, inherited)
		return v.VisitSource(h)
	}
	v.StaticLib = func(s *source.StaticLib) error {
		d.StaticLib.applyLocal(s, inherited)
		if err := source.ApplyAll(d.visitor(s.Path), s.Headers()); err != nil {
			return err
		}
		s.CompactCollections()
		return v.VisitArchSource(s)
	}
	v.DynamicLib = func(dl *source.DynamicLib) error {
		d.DynamicLib.applyLocal(dl, inherited)
		nested := d.visitor(dl.Path)
		if err := source.ApplyAll(nested, dl.Headers()); err != nil {
			return err
		}
		if err := source.ApplyAll(nested, dl.Implibs()); err != nil {
			return err
		}
		dl.CompactCollections()
		return v.VisitArchSource(dl)
	}
	v.Executable = func(e *source.Executable) error {
		d.Executable.applyLocal(e, inherited)
		nested := d.visitor(e.Path)
		if err := source.ApplyAll(nested, e.Headers()); err != nil {
			return err
		}
		if err := source.ApplyAll(nested, e.Libraries()); err != nil {
			return err
		}
		e.CompactCollections()
		return v.VisitArchSource(e)
	}
	return v
}

// CreateDefaultHeaderFiles synthesizes the profile's default header files, or returns nil
// when the profile lists none.
func (d *Document) CreateDefaultHeaderFiles() ([]*source.HeaderFile, error) {
	if d.DefaultHeaderFiles == nil {
		return nil, nil
	}
	out := make([]*source.HeaderFile, len(d.DefaultHeaderFiles))
	for i, def := range d.DefaultHeaderFiles {
		out[i] = def.Create()
	}
	return out, Apply(d, out)
}

// CreateDefaultStaticLibs synthesizes the profile's default static libraries, or returns
// nil when the profile lists none.
func (d *Document) CreateDefaultStaticLibs() ([]*source.StaticLib, error) {
	if d.DefaultStaticLibs == nil {
		return nil, nil
	}
	out := make([]*source.StaticLib, len(d.DefaultStaticLibs))
	for i, def := range d.DefaultStaticLibs {
		out[i] = def.Create()
	}
	return out, Apply(d, out)
}

// CreateDefaultDynamicLibs synthesizes the profile's default dynamic libraries, or returns
// nil when the profile lists none.
func (d *Document) CreateDefaultDynamicLibs() ([]*source.DynamicLib, error) {
	if d.DefaultDynamicLibs == nil {
		return nil, nil
	}
	out := make([]*source.DynamicLib, len(d.DefaultDynamicLibs))
	for i, def := range d.DefaultDynamicLibs {
		out[i] = def.Create()
	}
	return out, Apply(d, out)
}

// CreateDefaultExecutables synthesizes the profile's default executables, or returns nil
// when the profile lists none.
func (d *Document) CreateDefaultExecutables() ([]*source.Executable, error) {
	if d.DefaultExecutables == nil {
		return nil, nil
	}
	out := make([]*source.Executable, len(d.DefaultExecutables))
	for i, def := range d.DefaultExecutables {
		out[i] = def.Create()
	}
	return out, Apply(d, out)
}
