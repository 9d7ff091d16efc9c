// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
//	//go:embed project_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Project](schema, data, "#Project",
//		cueutil.WithFilename("natpack.cue"))
//
// Errors carry the file name and the JSON-style path of the offending field, for example
// "natpack.cue: dynamic_libs[0].implibs[1].arch: conflicting values".
package cueutil
