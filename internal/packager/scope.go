// SPDX-License-Identifier: MPL-2.0

package packager

import (
	"fmt"

	"github.com/natpack/natpack/pkg/gather"
	"github.com/natpack/natpack/pkg/source"
)

// Scopes of a packaging run.
const (
	// ScopeAll packages every collection.
	ScopeAll Scope = iota
	// ScopeStatic packages the plain sources and the static libraries.
	ScopeStatic
	// ScopeDynamic packages the plain sources and the dynamic libraries.
	ScopeDynamic
	// ScopeExec packages the plain sources and the executables.
	ScopeExec
)

// Scope restricts a packaging run to the plain sources and one kind of output.
type Scope int

// ParseScope accepts "", "all", "static", "dynamic" and "exec".
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "all":
		return ScopeAll, nil
	case "static":
		return ScopeStatic, nil
	case "dynamic":
		return ScopeDynamic, nil
	case "exec":
		return ScopeExec, nil
	default:
		return ScopeAll, fmt.Errorf("unknown package scope %q", s)
	}
}

func (s Scope) String() string {
	switch s {
	case ScopeStatic:
		return "static"
	case ScopeDynamic:
		return "dynamic"
	case ScopeExec:
		return "exec"
	default:
		return "all"
	}
}

func (s Scope) includes(k source.Kind) bool {
	switch s {
	case ScopeStatic:
		return k == source.KindStaticLib
	case ScopeDynamic:
		return k == source.KindDynamicLib
	case ScopeExec:
		return k == source.KindExecutable
	default:
		return true
	}
}

// Restrict drops the collections outside the scope. Plain sources are always kept.
func (s Scope) Restrict(r gather.Roots) gather.Roots {
	out := gather.Roots{Sources: r.Sources}
	if s.includes(source.KindHeaderFile) {
		out.HeaderFiles = r.HeaderFiles
	}
	if s.includes(source.KindDynamicLib) {
		out.DynamicLibs = r.DynamicLibs
	}
	if s.includes(source.KindStaticLib) {
		out.StaticLibs = r.StaticLibs
	}
	if s.includes(source.KindExecutable) {
		out.Executables = r.Executables
	}
	return out
}
