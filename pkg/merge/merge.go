// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnresolvableCollision is returned when no qualifier makes the names of a colliding
// entry distinct.
var ErrUnresolvableCollision = errors.New("unresolvable naming collision")

type (
	// CollisionError reports the entry and the artifacts that could not be told apart.
	CollisionError struct {
		Name      string
		Artifacts []Artifact
	}

	// Namespace collects the artifacts contributing each entry path.
	Namespace struct {
		entries map[string][]Artifact
	}

	// Placement is one artifact's copy of an entry.
	Placement struct {
		Artifact Artifact
		Entry    string
	}
)

func (e *CollisionError) Error() string {
	keys := make([]string, len(e.Artifacts))
	for i, a := range e.Artifacts {
		keys[i] = a.Key()
	}
	return fmt.Sprintf("%s: %q is shipped by %s", ErrUnresolvableCollision, e.Name, strings.Join(keys, ", "))
}

func (e *CollisionError) Unwrap() error {
	return ErrUnresolvableCollision
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{entries: make(map[string][]Artifact)}
}

// Add records that a contributes entry. Adding the same pair twice has no effect.
func (n *Namespace) Add(a Artifact, entry string) {
	set := n.entries[entry]
	if slices.Contains(set, a) {
		return
	}
	n.entries[entry] = append(set, a)
}

// Contributors returns the artifacts that contribute entry.
func (n *Namespace) Contributors(entry string) []Artifact {
	return slices.Clone(n.entries[entry])
}

// Entries returns every recorded entry path, sorted.
func (n *Namespace) Entries() []string {
	out := make([]string, 0, len(n.entries))
	for e := range n.entries {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// Collisions returns the entry paths contributed by more than one artifact, sorted.
func (n *Namespace) Collisions() []string {
	var out []string
	for e, set := range n.entries {
		if len(set) > 1 {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}

// Resolve returns the name a's copy of entry is written under.
func (n *Namespace) Resolve(a Artifact, entry string) (string, error) {
	return UniqueName(a, entry, n.entries[entry])
}

// Destinations resolves every recorded copy and checks the results against each other: a
// renamed copy must not land on a name another artifact ships or resolves to. A clash is a
// *CollisionError naming the destination and both owners.
func (n *Namespace) Destinations() (map[Placement]string, error) {
	out := make(map[Placement]string)
	owners := make(map[string]Placement)
	for _, entry := range n.Entries() {
		for _, a := range n.entries[entry] {
			dest, err := n.Resolve(a, entry)
			if err != nil {
				return nil, err
			}
			p := Placement{Artifact: a, Entry: entry}
			if prev, taken := owners[dest]; taken && prev != p {
				return nil, &CollisionError{Name: dest, Artifacts: []Artifact{prev.Artifact, a}}
			}
			owners[dest] = p
			out[p] = dest
		}
	}
	return out, nil
}

// UniqueName returns the name a's copy of name is written under when every artifact in set
// ships an entry called name. A set of at most one artifact keeps the name. Otherwise the
// shortest qualifier that tells the members apart is inserted before the extension:
//
//   - the artifact id;
//   - group and artifact id;
//   - artifact id, with the group when groups differ, plus the classifier;
//   - the same, plus the version.
//
// The classifier is kept in the last form only when group, artifact and version alone still
// collide. Duplicate members of set are ignored.
func UniqueName(a Artifact, name string, set []Artifact) (string, error) {
	members := distinct(set)
	if len(members) <= 1 {
		return name, nil
	}

	suffix := "-" + a.ArtifactID
	if unique(members, func(x Artifact) string { return x.ArtifactID }) {
		return withSuffix(name, suffix), nil
	}
	groupArtifact := func(x Artifact) string { return x.GroupID + "-" + x.ArtifactID }
	if unique(members, groupArtifact) {
		return withSuffix(name, "-"+a.GroupID+suffix), nil
	}
	if !identical(members, func(x Artifact) string { return x.GroupID }) {
		suffix = "-" + a.GroupID + suffix
	}
	if unique(members, func(x Artifact) string { return groupArtifact(x) + x.classifierSuffix() }) {
		return withSuffix(name, suffix+a.classifierSuffix()), nil
	}
	if !unique(members, func(x Artifact) string { return groupArtifact(x) + "_" + x.Version }) {
		suffix += a.classifierSuffix()
	}
	if unique(members, func(x Artifact) string { return groupArtifact(x) + x.classifierSuffix() + "_" + x.Version }) {
		return withSuffix(name, suffix+"_"+a.Version), nil
	}
	return "", &CollisionError{Name: name, Artifacts: members}
}

func distinct(set []Artifact) []Artifact {
	out := make([]Artifact, 0, len(set))
	for _, a := range set {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func unique(set []Artifact, key func(Artifact) string) bool {
	seen := make(map[string]struct{}, len(set))
	for _, a := range set {
		k := key(a)
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

func identical(set []Artifact, key func(Artifact) string) bool {
	for _, a := range set[1:] {
		if key(a) != key(set[0]) {
			return false
		}
	}
	return true
}

// withSuffix inserts suffix before the extension of the last path element. Names whose last
// element has no extension, or starts with its only dot, get the suffix appended.
func withSuffix(name, suffix string) string {
	base := strings.LastIndexByte(name, '/') + 1
	dot := strings.LastIndexByte(name[base:], '.')
	if dot <= 0 {
		return name + suffix
	}
	at := base + dot
	return name[:at] + suffix + name[at:]
}
