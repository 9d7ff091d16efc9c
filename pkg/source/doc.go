// SPDX-License-Identifier: MPL-2.0

// Package source defines the descriptor tree used to select native build outputs for
// packaging.
//
// A descriptor names a folder (Path), a file-name glob (Pattern) and an optional
// destination hint (Dest). Architecture-specific kinds add an Arch label, and the library
// and executable kinds own nested collections of the headers, import libraries and
// libraries they depend on. An empty string always means "unset"; a nil collection means
// "unset" while a non-nil empty collection means "explicitly none".
//
// The set of kinds is closed. Code that needs kind-specific behaviour builds a Visitor whose
// unset hooks fall through to the hook of the parent kind.
package source
