// SPDX-License-Identifier: MPL-2.0

package defaults

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

const (
	identifierKey   = "identifier"
	dynamicLibKey   = "dynamic"
	executableKey   = "exec"
	staticLibKey    = "static"
	headerFileKey   = "header"
	pathKey         = "path"
	patternKey      = "pattern"
	archKey         = "arch"
	implibKey       = "implib"
	libraryKey      = "library"
	typeKey         = "type"
	buildCommandKey = "build"
)

// saver writes a default entry below prefix. counter is shared by the whole document so
// that synthetic entry identifiers never collide.
type saver interface {
	saveTo(p *properties.Properties, prefix string, counter *int) error
}

// ParseProperties reads a properties document without `${}` expansion.
func ParseProperties(data []byte) (*properties.Properties, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	return loader.LoadBytes(data)
}

// NewProperties returns an empty properties document without `${}` expansion.
func NewProperties() *properties.Properties {
	p := properties.NewProperties()
	p.DisableExpansion = true
	return p
}

// getSingle returns the value of key with '/' converted to the host separator, or "".
func getSingle(p *properties.Properties, key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	return filepath.FromSlash(v), true
}

func getAttr(p *properties.Properties, prefix, key string) string {
	v, _ := getSingle(p, prefix+"."+key)
	return v
}

// getMultiple splits a ';' separated identifier list. A missing key yields nil and a blank
// value yields an empty, non-nil list.
func getMultiple(p *properties.Properties, key string) []string {
	v, ok := getSingle(p, key)
	if !ok {
		return nil
	}
	ids := []string{}
	for id := range strings.SplitSeq(strings.TrimSpace(v), ";") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func setAttr(p *properties.Properties, prefix, key, value string) error {
	if value == "" {
		return nil
	}
	return set(p, prefix+"."+key, value)
}

func set(p *properties.Properties, key, value string) error {
	if _, _, err := p.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// saveMultiple writes each item under a fresh identifier made of the first letter of key
// and the next counter value, then writes the identifier list to prefix.key. A nil list
// writes nothing; an empty list writes an empty value.
func saveMultiple[T saver](p *properties.Properties, prefix, key string, items []T, counter *int) error {
	if items == nil {
		return nil
	}
	ids := make([]string, len(items))
	for i, item := range items {
		*counter++
		ids[i] = key[:1] + strconv.Itoa(*counter)
		if err := item.saveTo(p, ids[i], counter); err != nil {
			return err
		}
	}
	listKey := key
	if prefix != "" {
		listKey = prefix + "." + key
	}
	return set(p, listKey, strings.Join(ids, ";"))
}

// --- load ---

func (s *SourceDefaults) load(p *properties.Properties, prefix string) {
	s.Path = getAttr(p, prefix, pathKey)
	s.Pattern = getAttr(p, prefix, patternKey)
}

func (a *ArchSourceDefaults) load(p *properties.Properties, prefix string) {
	a.SourceDefaults.load(p, prefix)
	a.Arch = getAttr(p, prefix, archKey)
}

func (s *StaticLibDefaults) load(p *properties.Properties, prefix string) {
	s.ArchSourceDefaults.load(p, prefix)
	s.Headers = loadHeaders(p, prefix)
}

func (d *DynamicLibDefaults) load(p *properties.Properties, prefix string) {
	d.ArchSourceDefaults.load(p, prefix)
	d.Headers = loadHeaders(p, prefix)
	if ids := getMultiple(p, prefix+"."+implibKey); ids != nil {
		d.Implibs = make([]*StaticLibDefaults, len(ids))
		for i, id := range ids {
			d.Implibs[i] = &StaticLibDefaults{}
			d.Implibs[i].load(p, id)
		}
	}
}

func (e *ExecutableDefaults) load(p *properties.Properties, prefix string) {
	e.ArchSourceDefaults.load(p, prefix)
	e.Headers = loadHeaders(p, prefix)
	if ids := getMultiple(p, prefix+"."+libraryKey); ids != nil {
		e.Libraries = make([]LibraryDefaults, len(ids))
		for i, id := range ids {
			e.Libraries[i] = loadLibrary(p, id)
		}
	}
}

// loadLibrary picks the library variant from the entry's type key.
func loadLibrary(p *properties.Properties, id string) LibraryDefaults {
	switch getAttr(p, id, typeKey) {
	case staticLibKey:
		lib := &StaticLibDefaults{}
		lib.load(p, id)
		return lib
	case dynamicLibKey:
		lib := &DynamicLibDefaults{}
		lib.load(p, id)
		return lib
	default:
		lib := &ArchSourceDefaults{}
		lib.load(p, id)
		return lib
	}
}

func loadHeaders(p *properties.Properties, prefix string) []*HeaderFileDefaults {
	ids := getMultiple(p, prefix+"."+headerFileKey)
	if ids == nil {
		return nil
	}
	headers := make([]*HeaderFileDefaults, len(ids))
	for i, id := range ids {
		headers[i] = &HeaderFileDefaults{}
		headers[i].load(p, id)
	}
	return headers
}

// --- save ---

func (s *SourceDefaults) saveTo(p *properties.Properties, prefix string, _ *int) error {
	if err := setAttr(p, prefix, pathKey, s.Path); err != nil {
		return err
	}
	return setAttr(p, prefix, patternKey, s.Pattern)
}

func (a *ArchSourceDefaults) saveTo(p *properties.Properties, prefix string, counter *int) error {
	if err := a.SourceDefaults.saveTo(p, prefix, counter); err != nil {
		return err
	}
	return setAttr(p, prefix, archKey, a.Arch)
}

func (s *StaticLibDefaults) saveTo(p *properties.Properties, prefix string, counter *int) error {
	if err := s.ArchSourceDefaults.saveTo(p, prefix, counter); err != nil {
		return err
	}
	if err := saveMultiple(p, prefix, headerFileKey, s.Headers, counter); err != nil {
		return err
	}
	return saveLibraryType(p, prefix, s.libraryType())
}

func (d *DynamicLibDefaults) saveTo(p *properties.Properties, prefix string, counter *int) error {
	if err := d.ArchSourceDefaults.saveTo(p, prefix, counter); err != nil {
		return err
	}
	if err := saveMultiple(p, prefix, headerFileKey, d.Headers, counter); err != nil {
		return err
	}
	if err := saveMultiple(p, prefix, implibKey, d.Implibs, counter); err != nil {
		return err
	}
	return saveLibraryType(p, prefix, d.libraryType())
}

func (e *ExecutableDefaults) saveTo(p *properties.Properties, prefix string, counter *int) error {
	if err := e.ArchSourceDefaults.saveTo(p, prefix, counter); err != nil {
		return err
	}
	if err := saveMultiple(p, prefix, headerFileKey, e.Headers, counter); err != nil {
		return err
	}
	return saveMultiple(p, prefix, libraryKey, e.Libraries, counter)
}

// saveLibraryType tags entries of a library list so that loadLibrary can rebuild the
// right variant. Library list identifiers are the only ones starting with 'l'.
func saveLibraryType(p *properties.Properties, prefix, typ string) error {
	if !strings.HasPrefix(prefix, libraryKey[:1]) {
		return nil
	}
	return setAttr(p, prefix, typeKey, typ)
}

// Save writes the entry below prefix using a private identifier counter.
func (s *SourceDefaults) Save(p *properties.Properties, prefix string) error {
	var counter int
	return s.saveTo(p, prefix, &counter)
}

// Save writes the entry below prefix using a private identifier counter.
func (a *ArchSourceDefaults) Save(p *properties.Properties, prefix string) error {
	var counter int
	return a.saveTo(p, prefix, &counter)
}

// Save writes the entry below prefix using a private identifier counter.
func (s *StaticLibDefaults) Save(p *properties.Properties, prefix string) error {
	var counter int
	return s.saveTo(p, prefix, &counter)
}

// Save writes the entry below prefix using a private identifier counter.
func (d *DynamicLibDefaults) Save(p *properties.Properties, prefix string) error {
	var counter int
	return d.saveTo(p, prefix, &counter)
}

// Save writes the entry below prefix using a private identifier counter.
func (e *ExecutableDefaults) Save(p *properties.Properties, prefix string) error {
	var counter int
	return e.saveTo(p, prefix, &counter)
}
