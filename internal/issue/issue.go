// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	ProjectFileNotFoundId Id = iota + 1
	ProjectFileInvalidId
	ProfileInvalidId
	ConfigLoadFailedId
	ArchiveWriteFailedId
	SourceReadFailedId
	DuplicateEntryId
	ArtifactReadFailedId
	UnpackWriteFailedId
	NamingCollisionId
	UnsupportedVariantId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // lookup key
	mdMsg    MarkdownMsg // rendered with glamour
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the page with the glamour style at stylePath ("dark", "light", "notty" or
// a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	projectFileNotFoundIssue = &Issue{
		id: ProjectFileNotFoundId,
		mdMsg: `
# No natpack.cue found!

natpack reads the packaging setup of a project from a ` + "`natpack.cue`" + ` file in the
current directory.

## Things you can try:
- Run natpack from the project root
- Point natpack at the file explicitly:
~~~
$ natpack package --project path/to/natpack.cue
~~~

## Minimal project file:
~~~cue
artifact_id: "mylib"
defaults:    "linux"
~~~`,
	}

	projectFileInvalidIssue = &Issue{
		id: ProjectFileInvalidId,
		mdMsg: `
# natpack.cue is invalid!

The project file does not match the expected schema.

## Things you can try:
- Check field names: ` + "`sources`, `headers`, `static_libs`, `dynamic_libs`, `executables`" + `
- Nested lists belong to their library: ` + "`headers`, `implibs`, `libraries`" + `
- Library entries inside ` + "`libraries`" + ` need a ` + "`type`" + ` of "static", "dynamic" or "generic"
- Validate the file with:
~~~
$ cue vet natpack.cue
~~~`,
	}

	profileInvalidIssue = &Issue{
		id: ProfileInvalidId,
		mdMsg: `
# Defaults profile could not be read!

A profile file was found but could not be decoded.

## Things you can try:
- Compare it with a stock profile:
~~~
$ natpack profile show linux --format yaml
~~~
- Profiles named ` + "`<name>.defaults`" + ` use the key=value form; ` + "`.yaml` and `.toml`" + ` use the tree form
- Remove the file to fall back to the built-in profile of the same name`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The natpack configuration file could not be parsed.

## Things you can try:
- Check the syntax of your config file
- Write a fresh default file:
~~~
$ natpack config init
~~~
- Or delete it to use the built-in defaults`,
	}

	archiveWriteFailedIssue = &Issue{
		id: ArchiveWriteFailedId,
		mdMsg: `
# Could not write the archive!

The package archive could not be created or completed. Nothing usable was produced.

## Things you can try:
- Check that the target folder is writable
- Make sure no other process holds the archive open
- Check the free disk space`,
	}

	sourceReadFailedIssue = &Issue{
		id: SourceReadFailedId,
		mdMsg: `
# Could not read a build output!

A file selected for packaging could not be opened or read.

## Things you can try:
- Check the file permissions
- Re-run the build; the file may have been removed while packaging`,
	}

	duplicateEntryIssue = &Issue{
		id: DuplicateEntryId,
		mdMsg: `
# Two files map to the same archive entry!

Different source folders place files with the same name under the same archive folder.

## Things you can try:
- Narrow one of the patterns
- Give one of the sources a ` + "`dest`" + ` folder`,
	}

	artifactReadFailedIssue = &Issue{
		id: ArtifactReadFailedId,
		mdMsg: `
# Could not read a dependency!

A dependency archive is missing or is not a valid zip file.

## Things you can try:
- Check the ` + "`file`" + ` of the dependency in natpack.cue
- Re-create the dependency with ` + "`natpack package`",
	}

	unpackWriteFailedIssue = &Issue{
		id: UnpackWriteFailedId,
		mdMsg: `
# Could not write an unpacked file!

An entry could not be written below the dependency folder.

## Things you can try:
- Remove folders that have the name of a file being unpacked
- Clean the dependency folder and try again`,
	}

	namingCollisionIssue = &Issue{
		id: NamingCollisionId,
		mdMsg: `
# Dependencies cannot be told apart!

Several dependencies ship the same entry, and their group, artifact, classifier and version
are identical. No unique name exists for their copies.

## Things you can try:
- Remove one of the duplicated dependencies
- Give one of them a classifier`,
	}

	unsupportedVariantIssue = &Issue{
		id: UnsupportedVariantId,
		mdMsg: `
# Unsupported descriptor!

A descriptor kind reached an operation that has no handling for it. This is a bug in natpack.`,
	}

	issues = map[Id]*Issue{
		projectFileNotFoundIssue.Id(): projectFileNotFoundIssue,
		projectFileInvalidIssue.Id():  projectFileInvalidIssue,
		profileInvalidIssue.Id():      profileInvalidIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		archiveWriteFailedIssue.Id():  archiveWriteFailedIssue,
		sourceReadFailedIssue.Id():    sourceReadFailedIssue,
		duplicateEntryIssue.Id():      duplicateEntryIssue,
		artifactReadFailedIssue.Id():  artifactReadFailedIssue,
		unpackWriteFailedIssue.Id():   unpackWriteFailedIssue,
		namingCollisionIssue.Id():     namingCollisionIssue,
		unsupportedVariantIssue.Id():  unsupportedVariantIssue,
	}
)

// Values returns the catalog ordered by id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, len(ids))
	for i, id := range ids {
		out[i] = issues[id]
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
