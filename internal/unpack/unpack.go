// SPDX-License-Identifier: MPL-2.0

// Package unpack extracts the archives of native dependencies into one shared folder,
// renaming entries that more than one dependency ships.
package unpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natpack/natpack/internal/issue"
	"github.com/natpack/natpack/pkg/merge"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"
)

// DefaultDependencyDir is the folder below the target that dependencies land in when the
// request names none.
const DefaultDependencyDir = "dependency"

// ErrUnsafeEntry is returned for archive entries that would be written outside the
// dependency folder.
var ErrUnsafeEntry = errors.New("archive entry escapes the dependency folder")

type (
	// Request describes one unpack run.
	Request struct {
		// Artifacts are the resolved dependencies. Only native kinds are unpacked.
		Artifacts []merge.Artifact
		// TargetDir is the build output folder.
		TargetDir string
		// DependencyDir is the folder below TargetDir to unpack into.
		DependencyDir string
		Skip          bool
	}

	// Result summarises an unpack run.
	Result struct {
		// Dir is the folder that was unpacked into, "" when skipped.
		Dir     string
		Skipped bool
		// Artifacts is the number of native artifacts unpacked.
		Artifacts int
		// Files is the number of files written.
		Files int
		// Renamed is the number of files written under a qualified name.
		Renamed int
	}

	// CreateFunc creates an unpacked file.
	CreateFunc func(name string) (io.WriteCloser, error)

	// Unpacker runs unpack requests.
	Unpacker struct {
		logger *log.Logger
		create CreateFunc
	}

	// Option configures an Unpacker.
	Option func(*Unpacker)
)

// WithLogger routes progress messages to logger.
func WithLogger(logger *log.Logger) Option {
	return func(u *Unpacker) { u.logger = logger }
}

// WithCreator replaces the function used to create unpacked files.
func WithCreator(create CreateFunc) Option {
	return func(u *Unpacker) { u.create = create }
}

// New returns an Unpacker writing to the local file system.
func New(opts ...Option) *Unpacker {
	u := &Unpacker{
		logger: log.New(io.Discard),
		create: func(name string) (io.WriteCloser, error) { return os.Create(name) },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Dir returns the folder req unpacks into.
func (req *Request) Dir() string {
	dir := req.DependencyDir
	if dir == "" {
		dir = DefaultDependencyDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(req.TargetDir, dir)
}

// Unpack scans every native artifact for its entry names, then extracts each artifact with
// collision-free names. The dependency folder is created even when there is nothing to
// unpack.
func (u *Unpacker) Unpack(ctx context.Context, req Request) (*Result, error) {
	if req.Skip {
		u.logger.Debug("Skipping step")
		return &Result{Skipped: true}, nil
	}

	dir := req.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, writeError(dir, err)
	}

	var natives []merge.Artifact
	for _, a := range req.Artifacts {
		if a.Kind.IsNative() {
			natives = append(natives, a)
		} else {
			u.logger.Debug("Ignoring non-native dependency", "artifact", a.Key())
		}
	}

	names := merge.NewNamespace()
	for _, a := range natives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := u.scan(a, names); err != nil {
			return nil, err
		}
	}

	dests, err := names.Destinations()
	if err != nil {
		var ce *merge.CollisionError
		if errors.As(err, &ce) {
			return nil, collisionError(ce.Name, err)
		}
		return nil, collisionError(dir, err)
	}

	res := &Result{Dir: dir, Artifacts: len(natives)}
	for _, a := range natives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := u.extract(ctx, a, dests, dir, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (u *Unpacker) scan(a merge.Artifact, names *merge.Namespace) (err error) {
	u.logger.Debug("Scanning " + a.Key())
	zr, err := zip.OpenReader(a.File)
	if err != nil {
		return readError(a, err)
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = readError(a, closeErr)
		}
	}()

	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			names.Add(a, f.Name)
		}
	}
	return nil
}

func (u *Unpacker) extract(ctx context.Context, a merge.Artifact, dests map[merge.Placement]string, dir string, res *Result) (err error) {
	u.logger.Info("Unpacking " + a.Key())
	zr, err := zip.OpenReader(a.File)
	if err != nil {
		return readError(a, err)
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = readError(a, closeErr)
		}
	}()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		dest, ok := dests[merge.Placement{Artifact: a, Entry: f.Name}]
		if !ok {
			return readError(a, fmt.Errorf("%s changed since it was scanned", f.Name))
		}
		u.logger.Debugf("Writing %s as %s", f.Name, dest)
		if !filepath.IsLocal(filepath.FromSlash(dest)) {
			return readError(a, fmt.Errorf("%w: %s", ErrUnsafeEntry, f.Name))
		}
		if err := u.writeEntry(f, filepath.Join(dir, filepath.FromSlash(dest))); err != nil {
			return err
		}
		res.Files++
		if dest != f.Name {
			res.Renamed++
		}
	}
	return nil
}

func (u *Unpacker) writeEntry(f *zip.File, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return writeError(target, err)
	}
	in, err := f.Open()
	if err != nil {
		return writeError(target, err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = writeError(target, closeErr)
		}
	}()

	out, err := u.create(target)
	if err != nil {
		return writeError(target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return writeError(target, err)
	}
	if err := out.Close(); err != nil {
		return writeError(target, err)
	}
	return nil
}

func readError(a merge.Artifact, err error) error {
	return issue.NewErrorContext().
		WithOperation("read dependency " + a.Key()).
		WithResource(a.File).
		WithSuggestion("Check that the dependency archive exists and is a valid zip file").
		WithIssue(issue.ArtifactReadFailedId).
		Wrap(err).
		BuildError()
}

func writeError(target string, err error) error {
	return issue.NewErrorContext().
		WithOperation("unpack").
		WithResource(target).
		WithSuggestion("Check that the dependency folder is writable and that no folder is in the way").
		WithIssue(issue.UnpackWriteFailedId).
		Wrap(err).
		BuildError()
}

func collisionError(entry string, err error) error {
	return issue.NewErrorContext().
		WithOperation("name unpacked file").
		WithResource(entry).
		WithSuggestion("Remove one of the dependencies or give them distinct classifiers").
		WithIssue(issue.NamingCollisionId).
		Wrap(err).
		BuildError()
}
