// SPDX-License-Identifier: MPL-2.0

// Package defaults fills unset descriptor attributes from named platform profiles.
//
// A profile is a Document: one ambient default per descriptor kind, optional lists of
// complete default entries used to synthesize whole collections, and a default build
// command. Documents are stored as flat properties files (see Load and Save) and can be
// exported to and imported from a nested YAML or TOML Profile tree.
//
// Application is fill-only: a value the caller set is never overwritten.
package defaults
