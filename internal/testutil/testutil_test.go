// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestZipRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "a.zip")
	WriteZip(t, path, Entry{"b/x.h", "x"}, Entry{"a.txt", "hello"})

	entries := ReadZip(t, path)
	if len(entries) != 2 || entries[0] != (Entry{"b/x.h", "x"}) || entries[1] != (Entry{"a.txt", "hello"}) {
		t.Errorf("ReadZip = %+v", entries)
	}
	if names := ZipNames(t, path); !slices.Equal(names, []string{"a.txt", "b/x.h"}) {
		t.Errorf("ZipNames = %v", names)
	}
}

func TestWriteTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{"a/b/c.txt": "c", "d.txt": "d"}
	WriteTree(t, root, files)

	got := ListFiles(t, root)
	if len(got) != 2 || got["a/b/c.txt"] != "c" || got["d.txt"] != "d" {
		t.Errorf("ListFiles = %v", got)
	}
}
