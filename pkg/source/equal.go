// SPDX-License-Identifier: MPL-2.0

package source

import (
	"strconv"
	"strings"
)

// Equal reports whether a and b are the same kind with the same attributes and
// structurally equal nested collections. A subtype is never equal to its parent kind,
// and a nil collection is not equal to an empty one.
func Equal(a, b Descriptor) bool {
	aNil := a == nil || a.isNil()
	bNil := b == nil || b.isNil()
	if aNil || bNil {
		return aNil == bNil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if *a.Base() != *b.Base() {
		return false
	}
	switch x := a.(type) {
	case *Source, *HeaderFile:
		return true
	case *ArchSource:
		return x.Arch == b.(*ArchSource).Arch
	case *StaticLib:
		y := b.(*StaticLib)
		return x.Arch == y.Arch && equalAll(x.headers, y.headers)
	case *DynamicLib:
		y := b.(*DynamicLib)
		return x.Arch == y.Arch && equalAll(x.headers, y.headers) && equalAll(x.implibs, y.implibs)
	case *Executable:
		y := b.(*Executable)
		return x.Arch == y.Arch && equalAll(x.headers, y.headers) && equalAll(x.libraries, y.libraries)
	default:
		return false
	}
}

func equalAll[T Descriptor](a, b []T) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Fingerprint renders a key that is identical for exactly the descriptors Equal
// considers equal. It is suitable as a map key.
func Fingerprint(d Descriptor) string {
	var sb strings.Builder
	fingerprint(&sb, d)
	return sb.String()
}

func fingerprint(sb *strings.Builder, d Descriptor) {
	if d == nil || d.isNil() {
		sb.WriteString("nil")
		return
	}
	base := d.Base()
	sb.WriteString(strconv.Itoa(int(d.Kind())))
	for _, field := range []string{base.Path, base.Pattern, base.Dest} {
		sb.WriteByte('|')
		sb.WriteString(strconv.Quote(field))
	}
	switch x := d.(type) {
	case *ArchSource:
		sb.WriteByte('|')
		sb.WriteString(strconv.Quote(x.Arch))
	case *StaticLib:
		sb.WriteByte('|')
		sb.WriteString(strconv.Quote(x.Arch))
		fingerprintAll(sb, x.headers)
	case *DynamicLib:
		sb.WriteByte('|')
		sb.WriteString(strconv.Quote(x.Arch))
		fingerprintAll(sb, x.headers)
		fingerprintAll(sb, x.implibs)
	case *Executable:
		sb.WriteByte('|')
		sb.WriteString(strconv.Quote(x.Arch))
		fingerprintAll(sb, x.headers)
		fingerprintAll(sb, x.libraries)
	}
}

func fingerprintAll[T Descriptor](sb *strings.Builder, items []T) {
	if items == nil {
		sb.WriteString("|~")
		return
	}
	sb.WriteString("|[")
	for i, item := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		fingerprint(sb, item)
	}
	sb.WriteByte(']')
}

// String renders d as its kind name followed by the attributes that are set, for example
// "HeaderFile, path:Foo, pattern:*".
func String(d Descriptor) string {
	if d == nil || d.isNil() {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(d.Kind().String())
	base := d.Base()
	if base.Path != "" {
		sb.WriteString(", path:")
		sb.WriteString(base.Path)
	}
	if base.Pattern != "" {
		sb.WriteString(", pattern:")
		sb.WriteString(base.Pattern)
	}
	if base.Dest != "" {
		sb.WriteString(", dest:")
		sb.WriteString(base.Dest)
	}
	if a, ok := d.(Arch); ok && a.ArchBase().Arch != "" {
		sb.WriteString(", arch:")
		sb.WriteString(a.ArchBase().Arch)
	}
	switch x := d.(type) {
	case *StaticLib:
		writeList(&sb, "headers", x.headers)
	case *DynamicLib:
		writeList(&sb, "headers", x.headers)
		writeList(&sb, "implibs", x.implibs)
	case *Executable:
		writeList(&sb, "headers", x.headers)
		writeList(&sb, "libraries", x.libraries)
	}
	return sb.String()
}

func writeList[T Descriptor](sb *strings.Builder, name string, items []T) {
	if items == nil {
		return
	}
	sb.WriteString(", ")
	sb.WriteString(name)
	sb.WriteString(":[")
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(String(item))
	}
	sb.WriteByte(']')
}

func (s *Source) String() string     { return String(s) }
func (a *ArchSource) String() string { return String(a) }
func (h *HeaderFile) String() string { return String(h) }
func (s *StaticLib) String() string  { return String(s) }
func (d *DynamicLib) String() string { return String(d) }
func (e *Executable) String() string { return String(e) }
