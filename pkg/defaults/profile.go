// SPDX-License-Identifier: MPL-2.0

package defaults

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/magiconair/properties"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Profile encodings.
const (
	FormatProperties Format = "properties"
	FormatYAML       Format = "yaml"
	FormatTOML       Format = "toml"
)

// ErrUnknownFormat is returned for an encoding name that is not one of the Format constants.
var ErrUnknownFormat = errors.New("unknown profile format")

type (
	// Format names a profile encoding.
	Format string

	// Profile is the nested tree form of a Document. Collections are pointers so that an
	// explicitly empty list ("none") survives a round trip distinct from an absent one.
	Profile struct {
		Identifier string       `yaml:"identifier" toml:"identifier"`
		Build      string       `yaml:"build,omitempty" toml:"build,omitempty"`
		Header     *SourceNode  `yaml:"header,omitempty" toml:"header,omitempty"`
		Static     *StaticNode  `yaml:"static,omitempty" toml:"static,omitempty"`
		Dynamic    *DynamicNode `yaml:"dynamic,omitempty" toml:"dynamic,omitempty"`
		Exec       *ExecNode    `yaml:"exec,omitempty" toml:"exec,omitempty"`

		Headers     *[]SourceNode  `yaml:"headers,omitempty" toml:"headers,omitempty"`
		StaticLibs  *[]StaticNode  `yaml:"static_libs,omitempty" toml:"static_libs,omitempty"`
		DynamicLibs *[]DynamicNode `yaml:"dynamic_libs,omitempty" toml:"dynamic_libs,omitempty"`
		Executables *[]ExecNode    `yaml:"executables,omitempty" toml:"executables,omitempty"`
	}

	// SourceNode is a header entry.
	SourceNode struct {
		Path    string `yaml:"path,omitempty" toml:"path,omitempty"`
		Pattern string `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	}

	// StaticNode is a static library entry.
	StaticNode struct {
		Path    string        `yaml:"path,omitempty" toml:"path,omitempty"`
		Pattern string        `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
		Arch    string        `yaml:"arch,omitempty" toml:"arch,omitempty"`
		Headers *[]SourceNode `yaml:"headers,omitempty" toml:"headers,omitempty"`
	}

	// DynamicNode is a dynamic library entry.
	DynamicNode struct {
		Path    string        `yaml:"path,omitempty" toml:"path,omitempty"`
		Pattern string        `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
		Arch    string        `yaml:"arch,omitempty" toml:"arch,omitempty"`
		Headers *[]SourceNode `yaml:"headers,omitempty" toml:"headers,omitempty"`
		Implibs *[]StaticNode `yaml:"implibs,omitempty" toml:"implibs,omitempty"`
	}

	// LibraryNode is a library entry of an executable. Type is "static", "dynamic" or
	// empty for a generic entry.
	LibraryNode struct {
		Type    string        `yaml:"type,omitempty" toml:"type,omitempty"`
		Path    string        `yaml:"path,omitempty" toml:"path,omitempty"`
		Pattern string        `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
		Arch    string        `yaml:"arch,omitempty" toml:"arch,omitempty"`
		Headers *[]SourceNode `yaml:"headers,omitempty" toml:"headers,omitempty"`
		Implibs *[]StaticNode `yaml:"implibs,omitempty" toml:"implibs,omitempty"`
	}

	// ExecNode is an executable entry.
	ExecNode struct {
		Path      string         `yaml:"path,omitempty" toml:"path,omitempty"`
		Pattern   string         `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
		Arch      string         `yaml:"arch,omitempty" toml:"arch,omitempty"`
		Headers   *[]SourceNode  `yaml:"headers,omitempty" toml:"headers,omitempty"`
		Libraries *[]LibraryNode `yaml:"libraries,omitempty" toml:"libraries,omitempty"`
	}
)

// ParseFormat maps an encoding name or file extension (without the dot) to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "properties", "defaults":
		return FormatProperties, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encode writes d to w in the given format.
func Encode(w io.Writer, d *Document, format Format) error {
	switch format {
	case FormatProperties:
		p := NewProperties()
		if err := d.Save(p); err != nil {
			return err
		}
		p.Sort()
		_, err := p.Write(w, properties.UTF8)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ProfileOf(d)); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(ProfileOf(d))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode reads a document in the given format. name is used when the data carries no
// identifier of its own.
func Decode(data []byte, format Format, name string) (*Document, error) {
	var prof Profile
	switch format {
	case FormatProperties:
		p, err := ParseProperties(data)
		if err != nil {
			return nil, err
		}
		return Load(name, p), nil
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&prof); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&prof); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if prof.Identifier == "" {
		prof.Identifier = name
	}
	return prof.Document(), nil
}

// ProfileOf converts d to its tree form.
func ProfileOf(d *Document) *Profile {
	p := &Profile{
		Identifier: d.Identifier,
		Build:      d.BuildCommand,
		Header:     nonZero(sourceNode(&d.HeaderFile.SourceDefaults)),
		Static:     nonZero(staticNode(&d.StaticLib)),
		Dynamic:    nonZero(dynamicNode(&d.DynamicLib)),
		Exec:       nonZero(execNode(&d.Executable)),
	}
	p.Headers = nodes(d.DefaultHeaderFiles, func(h *HeaderFileDefaults) SourceNode { return sourceNode(&h.SourceDefaults) })
	p.StaticLibs = nodes(d.DefaultStaticLibs, staticNode)
	p.DynamicLibs = nodes(d.DefaultDynamicLibs, dynamicNode)
	p.Executables = nodes(d.DefaultExecutables, execNode)
	return p
}

// Document converts the tree back to a Document.
func (p *Profile) Document() *Document {
	d := &Document{Identifier: p.Identifier, BuildCommand: p.Build}
	if p.Header != nil {
		d.HeaderFile = *headerDefaults(*p.Header)
	}
	if p.Static != nil {
		d.StaticLib = *staticDefaults(*p.Static)
	}
	if p.Dynamic != nil {
		d.DynamicLib = *dynamicDefaults(*p.Dynamic)
	}
	if p.Exec != nil {
		d.Executable = *execDefaults(*p.Exec)
	}
	d.DefaultHeaderFiles = entries(p.Headers, headerDefaults)
	d.DefaultStaticLibs = entries(p.StaticLibs, staticDefaults)
	d.DefaultDynamicLibs = entries(p.DynamicLibs, dynamicDefaults)
	d.DefaultExecutables = entries(p.Executables, execDefaults)
	return d
}

func nonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func nodes[T, N any](items []T, conv func(T) N) *[]N {
	if items == nil {
		return nil
	}
	out := make([]N, len(items))
	for i, item := range items {
		out[i] = conv(item)
	}
	return &out
}

func entries[N, T any](list *[]N, conv func(N) T) []T {
	if list == nil {
		return nil
	}
	out := make([]T, len(*list))
	for i, n := range *list {
		out[i] = conv(n)
	}
	return out
}

func sourceNode(s *SourceDefaults) SourceNode {
	return SourceNode{Path: s.Path, Pattern: s.Pattern}
}

func headerNodes(headers []*HeaderFileDefaults) *[]SourceNode {
	return nodes(headers, func(h *HeaderFileDefaults) SourceNode { return sourceNode(&h.SourceDefaults) })
}

func staticNode(s *StaticLibDefaults) StaticNode {
	return StaticNode{Path: s.Path, Pattern: s.Pattern, Arch: s.Arch, Headers: headerNodes(s.Headers)}
}

func dynamicNode(d *DynamicLibDefaults) DynamicNode {
	return DynamicNode{
		Path:    d.Path,
		Pattern: d.Pattern,
		Arch:    d.Arch,
		Headers: headerNodes(d.Headers),
		Implibs: nodes(d.Implibs, staticNode),
	}
}

func execNode(e *ExecutableDefaults) ExecNode {
	return ExecNode{
		Path:      e.Path,
		Pattern:   e.Pattern,
		Arch:      e.Arch,
		Headers:   headerNodes(e.Headers),
		Libraries: nodes(e.Libraries, libraryNode),
	}
}

func libraryNode(lib LibraryDefaults) LibraryNode {
	switch l := lib.(type) {
	case *StaticLibDefaults:
		n := staticNode(l)
		return LibraryNode{Type: staticLibKey, Path: n.Path, Pattern: n.Pattern, Arch: n.Arch, Headers: n.Headers}
	case *DynamicLibDefaults:
		n := dynamicNode(l)
		return LibraryNode{Type: dynamicLibKey, Path: n.Path, Pattern: n.Pattern, Arch: n.Arch, Headers: n.Headers, Implibs: n.Implibs}
	case *ArchSourceDefaults:
		return LibraryNode{Path: l.Path, Pattern: l.Pattern, Arch: l.Arch}
	default:
		return LibraryNode{}
	}
}

func headerDefaults(n SourceNode) *HeaderFileDefaults {
	return &HeaderFileDefaults{SourceDefaults: SourceDefaults{Path: n.Path, Pattern: n.Pattern}}
}

func archDefaults(path, pattern, arch string) ArchSourceDefaults {
	return ArchSourceDefaults{SourceDefaults: SourceDefaults{Path: path, Pattern: pattern}, Arch: arch}
}

func staticDefaults(n StaticNode) *StaticLibDefaults {
	return &StaticLibDefaults{
		ArchSourceDefaults: archDefaults(n.Path, n.Pattern, n.Arch),
		Headers:            entries(n.Headers, headerDefaults),
	}
}

func dynamicDefaults(n DynamicNode) *DynamicLibDefaults {
	return &DynamicLibDefaults{
		ArchSourceDefaults: archDefaults(n.Path, n.Pattern, n.Arch),
		Headers:            entries(n.Headers, headerDefaults),
		Implibs:            entries(n.Implibs, staticDefaults),
	}
}

func execDefaults(n ExecNode) *ExecutableDefaults {
	return &ExecutableDefaults{
		ArchSourceDefaults: archDefaults(n.Path, n.Pattern, n.Arch),
		Headers:            entries(n.Headers, headerDefaults),
		Libraries:          entries(n.Libraries, libraryDefaults),
	}
}

func libraryDefaults(n LibraryNode) LibraryDefaults {
	switch n.Type {
	case staticLibKey:
		return staticDefaults(StaticNode{Path: n.Path, Pattern: n.Pattern, Arch: n.Arch, Headers: n.Headers})
	case dynamicLibKey:
		return dynamicDefaults(DynamicNode{Path: n.Path, Pattern: n.Pattern, Arch: n.Arch, Headers: n.Headers, Implibs: n.Implibs})
	default:
		a := archDefaults(n.Path, n.Pattern, n.Arch)
		return &a
	}
}
