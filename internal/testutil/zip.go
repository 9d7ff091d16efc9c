// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Entry is one member of a zip fixture.
type Entry struct {
	Name    string
	Content string
}

// WriteZip writes the entries, in order, to a new zip file at path.
func WriteZip(t testing.TB, path string, entries ...Entry) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", e.Name, err)
		}
		if _, err := io.WriteString(w, e.Content); err != nil {
			t.Fatalf("failed to write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close %s: %v", path, err)
	}
}

// ReadZip returns the entries of the zip file at path in archive order.
func ReadZip(t testing.TB, path string) []Entry {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() {
		if err := zr.Close(); err != nil {
			t.Errorf("failed to close %s: %v", path, err)
		}
	}()

	out := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		out = append(out, Entry{Name: f.Name, Content: string(data)})
	}
	return out
}

// ZipNames returns the sorted entry names of the zip file at path.
func ZipNames(t testing.TB, path string) []string {
	t.Helper()
	entries := ReadZip(t, path)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	slices.Sort(names)
	return names
}
