// SPDX-License-Identifier: MPL-2.0

// Package packager writes the package archive of a project: it fills descriptors from a
// defaults profile, gathers the folders they select and zips the matching files.
package packager

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/natpack/natpack/internal/issue"
	"github.com/natpack/natpack/pkg/defaults"
	"github.com/natpack/natpack/pkg/gather"
	"github.com/natpack/natpack/pkg/source"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"
	"github.com/zeebo/blake3"
)

// ArchiveExt is appended to the artifact id to name the archive.
const ArchiveExt = ".zip"

// ErrDuplicateEntry is returned when two source files map to the same archive entry.
var ErrDuplicateEntry = errors.New("duplicate archive entry")

type (
	// Request describes one packaging run.
	Request struct {
		// Profile supplies defaults. Nil means the inert profile.
		Profile *defaults.Document
		// Roots are the configured descriptors. Nil collections are synthesized from the
		// profile's default lists. They are modified in place by the defaulting pass.
		Roots gather.Roots
		// Scope restricts the run to the plain sources and one kind.
		Scope Scope
		// ArtifactID names the archive.
		ArtifactID string
		// TargetDir receives the archive. Relative to BaseDir when not absolute.
		TargetDir string
		// BaseDir resolves relative descriptor paths; "" is the working directory.
		BaseDir string
		// Skip turns the run into a no-op.
		Skip bool
	}

	// Result describes the written archive.
	Result struct {
		// Archive is the path of the archive, "" when skipped.
		Archive string
		Skipped bool
		// Entries is the number of files added.
		Entries int
		// Size is the archive size in bytes.
		Size int64
		// Digest is the hex BLAKE3-256 digest of the archive.
		Digest string
	}

	// OpenFunc opens a source file for reading.
	OpenFunc func(name string) (io.ReadCloser, error)

	// CreateFunc creates the archive file.
	CreateFunc func(name string) (io.WriteCloser, error)

	// Packager runs packaging requests.
	Packager struct {
		logger *log.Logger
		open   OpenFunc
		create CreateFunc
	}

	// Option configures a Packager.
	Option func(*Packager)

	countingWriter struct {
		w io.Writer
		n int64
	}
)

// WithLogger routes progress messages to logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Packager) { p.logger = logger }
}

// WithOpener replaces the function used to open source files.
func WithOpener(open OpenFunc) Option {
	return func(p *Packager) { p.open = open }
}

// WithCreator replaces the function used to create the archive.
func WithCreator(create CreateFunc) Option {
	return func(p *Packager) { p.create = create }
}

// New returns a Packager working on the local file system.
func New(opts ...Option) *Packager {
	p := &Packager{
		logger: log.New(io.Discard),
		open:   func(name string) (io.ReadCloser, error) { return os.Open(name) },
		create: func(name string) (io.WriteCloser, error) { return os.Create(name) },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ArchivePath returns the archive location for req.
func (req *Request) ArchivePath() string {
	return filepath.Join(req.resolve(req.TargetDir), req.ArtifactID+ArchiveExt)
}

func (req *Request) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(req.BaseDir, path)
}

// Package applies defaults to req.Roots and writes the archive. A failed run leaves no
// archive behind.
func (p *Packager) Package(ctx context.Context, req Request) (*Result, error) {
	if req.Skip {
		p.logger.Debug("Skipping step")
		return &Result{Skipped: true}, nil
	}

	req.Roots = req.Scope.Restrict(req.Roots)
	if err := ApplyDefaults(req.Profile, &req.Roots, req.Scope); err != nil {
		return nil, err
	}
	destinations, err := gather.Gather(req.Roots)
	if err != nil {
		return nil, err
	}

	target := req.ArchivePath()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, archiveError(target, err)
	}
	p.logger.Debug("Writing to " + target)

	res, err := p.write(ctx, &req, target, destinations)
	if err != nil {
		if rmErr := os.Remove(target); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			p.logger.Warn("failed to remove partial archive", "path", target, "error", rmErr)
		}
		return nil, err
	}
	return res, nil
}

func (p *Packager) write(ctx context.Context, req *Request, target string, destinations []gather.Destination) (res *Result, err error) {
	out, err := p.create(target)
	if err != nil {
		return nil, archiveError(target, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = archiveError(target, closeErr)
		}
	}()

	hasher := blake3.New()
	counter := &countingWriter{w: io.MultiWriter(out, hasher)}
	zw := zip.NewWriter(counter)

	entries := map[string]string{}
	for _, dst := range destinations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.addDestination(zw, req, dst, entries); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, archiveError(target, err)
	}

	return &Result{
		Archive: target,
		Entries: len(entries),
		Size:    counter.n,
		Digest:  hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (p *Packager) addDestination(zw *zip.Writer, req *Request, dst gather.Destination, entries map[string]string) error {
	p.logger.Infof("Processing %s into %s (%s)", dst.Path, dst.Prefix, dst.Pattern)

	re, err := gather.Compile(dst.Pattern)
	if err != nil {
		return err
	}
	folder := req.resolve(dst.Path)
	files, err := matchingFiles(folder, re)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("list source folder").
			WithResource(folder).
			WithIssue(issue.SourceReadFailedId).
			Wrap(err).
			BuildError()
	}
	if len(files) == 0 {
		p.logger.Debug("Source folder is empty or does not exist", "path", folder)
		return nil
	}

	for _, name := range files {
		p.logger.Debugf("Adding %s to archive", name)
		file := filepath.Join(folder, name)
		entry := dst.Prefix + name
		if prev, dup := entries[entry]; dup {
			return issue.NewErrorContext().
				WithOperation("add " + entry).
				WithResource(file).
				WithSuggestion("The entry was already added from " + prev).
				WithIssue(issue.DuplicateEntryId).
				Wrap(fmt.Errorf("%w: %s", ErrDuplicateEntry, entry)).
				BuildError()
		}
		entries[entry] = file
		if err := p.copyFile(zw, entry, file); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packager) copyFile(zw *zip.Writer, entry, file string) (err error) {
	in, err := p.open(file)
	if err != nil {
		return sourceError(file, err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = sourceError(file, closeErr)
		}
	}()

	w, err := zw.Create(entry)
	if err != nil {
		return archiveError(entry, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return sourceError(file, err)
	}
	return nil
}

// matchingFiles lists the regular files directly inside folder whose names match re, in
// name order. A missing folder yields no files.
func matchingFiles(folder string, re *regexp.Regexp) ([]string, error) {
	dirEntries, err := os.ReadDir(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []string
	for _, de := range dirEntries {
		if !re.MatchString(de.Name()) {
			continue
		}
		info, err := os.Stat(filepath.Join(folder, de.Name()))
		if err != nil {
			return nil, err
		}
		if info.Mode().IsRegular() {
			out = append(out, de.Name())
		}
	}
	return out, nil
}

func archiveError(target string, err error) error {
	return issue.NewErrorContext().
		WithOperation("write archive").
		WithResource(target).
		WithSuggestion("Check that the target folder is writable").
		WithIssue(issue.ArchiveWriteFailedId).
		Wrap(err).
		BuildError()
}

func sourceError(file string, err error) error {
	return issue.NewErrorContext().
		WithOperation("read source file").
		WithResource(file).
		WithIssue(issue.SourceReadFailedId).
		Wrap(err).
		BuildError()
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// ApplyDefaults fills roots from profile. Configured collections are defaulted in place;
// nil collections in scope, other than the plain sources, are replaced by the profile's
// default entries.
func ApplyDefaults(profile *defaults.Document, roots *gather.Roots, scope Scope) error {
	if profile == nil {
		profile = defaults.None()
	}
	if err := profile.ApplyTo(roots.Sources...); err != nil {
		return err
	}
	if scope.includes(source.KindHeaderFile) {
		if err := fillCollection(profile, &roots.HeaderFiles, profile.CreateDefaultHeaderFiles); err != nil {
			return err
		}
	}
	if scope.includes(source.KindDynamicLib) {
		if err := fillCollection(profile, &roots.DynamicLibs, profile.CreateDefaultDynamicLibs); err != nil {
			return err
		}
	}
	if scope.includes(source.KindStaticLib) {
		if err := fillCollection(profile, &roots.StaticLibs, profile.CreateDefaultStaticLibs); err != nil {
			return err
		}
	}
	if scope.includes(source.KindExecutable) {
		return fillCollection(profile, &roots.Executables, profile.CreateDefaultExecutables)
	}
	return nil
}

func fillCollection[T source.Descriptor](profile *defaults.Document, items *[]T, create func() ([]T, error)) error {
	if *items != nil {
		return defaults.Apply(profile, *items)
	}
	created, err := create()
	if err != nil {
		return err
	}
	*items = created
	return nil
}
