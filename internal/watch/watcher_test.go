// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// start runs w until the test ends.
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() = %v", err)
		}
	})
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitFired(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRecorder()
	w, err := New(Config{BaseDir: dir, Debounce: 200 * time.Millisecond, OnChange: r.onChange})
	if err != nil {
		t.Fatal(err)
	}
	start(t, w)

	for _, name := range []string{"c.h", "a.h", "b.h"} {
		writeFile(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}
	waitFired(t, r)

	calls := r.snapshot()
	if len(calls) != 1 {
		t.Fatalf("OnChange called %d times, want 1", len(calls))
	}
	if want := []string{"a.h", "b.h", "c.h"}; !slices.Equal(calls[0], want) {
		t.Errorf("changed = %v, want %v", calls[0], want)
	}
}

func TestWatcher_ExcludeAndIgnore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	r := newRecorder()
	w, err := New(Config{
		BaseDir:  dir,
		Exclude:  []string{target},
		Ignore:   []string{"**/*.o"},
		Debounce: 100 * time.Millisecond,
		OnChange: r.onChange,
	})
	if err != nil {
		t.Fatal(err)
	}
	start(t, w)

	writeFile(t, filepath.Join(target, "demo.zip"))
	writeFile(t, filepath.Join(dir, "main.o"))
	writeFile(t, filepath.Join(dir, "main.swp"))
	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "main.c"))
	waitFired(t, r)

	for _, call := range r.snapshot() {
		if !slices.Equal(call, []string{"main.c"}) {
			t.Errorf("changed = %v, want [main.c]", call)
		}
	}
}

func TestWatcher_NewFolders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRecorder()
	w, err := New(Config{BaseDir: dir, Debounce: 100 * time.Millisecond, OnChange: r.onChange})
	if err != nil {
		t.Fatal(err)
	}
	start(t, w)

	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	waitFired(t, r)

	writeFile(t, filepath.Join(dir, "lib", "a.lib"))
	deadline := time.After(5 * time.Second)
	for {
		if slices.ContainsFunc(r.snapshot(), func(c []string) bool { return slices.Contains(c, "lib/a.lib") }) {
			return
		}
		select {
		case <-r.fired:
		case <-deadline:
			t.Fatalf("change below a new folder was not seen: %v", r.snapshot())
		}
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() = %v", err)
	}
	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestNew_InvalidIgnorePattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("expected an invalid pattern error")
	}
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: slices.Concat(defaultIgnores, []string{"build/**"})}
	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"src/.git/objects/ab", true},
		{"include/api.h~", true},
		{"include/.api.h.swp", true},
		{"build/out.o", true},
		{"build", true},
		{"include/api.h", false},
		{"builder/x.c", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			if got := w.ignored(tt.rel); got != tt.want {
				t.Errorf("ignored(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}
