// SPDX-License-Identifier: MPL-2.0

package defaults

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// ProfileExt is the file extension of properties profiles.
const ProfileExt = ".defaults"

//go:embed profiles/*.defaults
var stockProfiles embed.FS

// extensions lists the file forms a profile may take, in lookup order.
var extensions = []string{ProfileExt, ".yaml", ".yml", ".toml"}

type (
	// Registry finds profiles by name, first in user directories and then among the
	// profiles built into the binary.
	Registry struct {
		dirs []string
	}

	// ProfileError reports a profile that exists but could not be read or parsed.
	ProfileError struct {
		Name string
		Path string
		Err  error
	}
)

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile %q (%s): %v", e.Name, e.Path, e.Err)
}

func (e *ProfileError) Unwrap() error { return e.Err }

// NewRegistry returns a registry searching dirs, in order, before the built-in profiles.
func NewRegistry(dirs ...string) *Registry {
	return &Registry{dirs: slices.Clone(dirs)}
}

// Get looks name up among the built-in profiles only.
func Get(name string) (*Document, error) {
	return NewRegistry().Lookup(name)
}

// Lookup returns the named profile. An empty name, a name no directory provides, or a
// name that is not a plain file name (separators, "." or "..") yields the inert document
// and no error.
func (r *Registry) Lookup(name string) (*Document, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return None(), nil
	}

	for _, dir := range r.dirs {
		for _, ext := range extensions {
			file := filepath.Join(dir, name+ext)
			data, err := os.ReadFile(file)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, &ProfileError{Name: name, Path: file, Err: err}
			}
			return decodeFile(name, file, data)
		}
	}

	file := path.Join("profiles", name+ProfileExt)
	data, err := stockProfiles.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return None(), nil
	}
	if err != nil {
		return nil, &ProfileError{Name: name, Path: file, Err: err}
	}
	return decodeFile(name, file, data)
}

func decodeFile(name, file string, data []byte) (*Document, error) {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(file), "."))
	if err != nil {
		return nil, &ProfileError{Name: name, Path: file, Err: err}
	}
	doc, err := Decode(data, format, name)
	if err != nil {
		return nil, &ProfileError{Name: name, Path: file, Err: err}
	}
	return doc, nil
}

// Names lists every profile name the registry can resolve, sorted and without duplicates.
func (r *Registry) Names() ([]string, error) {
	var names []string
	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list profiles in %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := filepath.Ext(e.Name())
			if slices.Contains(extensions, ext) {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
			}
		}
	}

	stock, err := fs.Glob(stockProfiles, "profiles/*"+ProfileExt)
	if err != nil {
		return nil, err
	}
	for _, file := range stock {
		names = append(names, strings.TrimSuffix(path.Base(file), ProfileExt))
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}
