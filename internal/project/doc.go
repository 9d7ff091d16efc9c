// SPDX-License-Identifier: MPL-2.0

// Package project reads natpack.cue, the per-project file naming the archive, the defaults
// profile, the descriptor collections and the resolved native dependencies.
package project
