// SPDX-License-Identifier: MPL-2.0

// Package merge computes collision-free names for archive entries contributed by several
// native artifacts that are unpacked into one folder.
package merge

import (
	"errors"
	"fmt"
	"strings"
)

// Native packaging kinds.
const (
	KindStatic  Kind = "native-static"
	KindExec    Kind = "native-exec"
	KindDynamic Kind = "native-dynamic"
)

// ErrInvalidKey is returned when an artifact key does not have the
// group:artifact:kind[:classifier]:version shape.
var ErrInvalidKey = errors.New("invalid artifact key")

type (
	// Kind is the declared packaging kind of an artifact.
	Kind string

	// Artifact identifies a dependency archive. Artifacts are comparable and are used as
	// set members; two artifacts are the same member only when every field matches.
	Artifact struct {
		GroupID    string
		ArtifactID string
		Version    string
		// Classifier is optional.
		Classifier string
		Kind       Kind
		// File is the archive location on disk.
		File string
	}
)

// NativeKinds returns the kinds that take part in unpacking.
func NativeKinds() []Kind {
	return []Kind{KindStatic, KindExec, KindDynamic}
}

// IsNative reports whether artifacts of this kind are unpacked.
func (k Kind) IsNative() bool {
	switch k {
	case KindStatic, KindExec, KindDynamic:
		return true
	default:
		return false
	}
}

// Key returns group:artifact:kind[:classifier]:version.
func (a Artifact) Key() string {
	parts := []string{a.GroupID, a.ArtifactID, string(a.Kind)}
	if a.Classifier != "" {
		parts = append(parts, a.Classifier)
	}
	parts = append(parts, a.Version)
	return strings.Join(parts, ":")
}

func (a Artifact) String() string {
	return a.Key()
}

// ParseKey parses the form produced by Key. File is left empty.
func ParseKey(key string) (Artifact, error) {
	parts := strings.Split(key, ":")
	for _, p := range parts {
		if p == "" {
			return Artifact{}, fmt.Errorf("%w %q: empty component", ErrInvalidKey, key)
		}
	}
	switch len(parts) {
	case 4:
		return Artifact{GroupID: parts[0], ArtifactID: parts[1], Kind: Kind(parts[2]), Version: parts[3]}, nil
	case 5:
		return Artifact{
			GroupID:    parts[0],
			ArtifactID: parts[1],
			Kind:       Kind(parts[2]),
			Classifier: parts[3],
			Version:    parts[4],
		}, nil
	default:
		return Artifact{}, fmt.Errorf("%w %q: want group:artifact:kind[:classifier]:version", ErrInvalidKey, key)
	}
}

func (a Artifact) classifierSuffix() string {
	if a.Classifier == "" {
		return ""
	}
	return "-" + a.Classifier
}
