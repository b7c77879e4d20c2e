// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	TemplatesLoadFailedId
	TemplateCycleId
	InvalidPresetId
	ExportHookFailedId
	EmptyExportId
	FilenameMismatchId
	InconsistentTextureSetId
	VersionQueryFailedId
	PublishCommitFailedId
	RegistrationFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the texpub configuration file.

## Configuration file locations:
- Linux: ~/.config/texpub/config.cue
- macOS: ~/Library/Application Support/texpub/config.cue
- Windows: %APPDATA%\texpub\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ texpub config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/texpub/config.cue
~~~

## Example configuration:
~~~cue
work_root:     "/projects/work"
publish_root:  "/projects/publish"
registry_root: "/projects/registry"
preset_prefix: "shotgrid"
~~~`,
	}

	templatesLoadFailedIssue = &Issue{
		id: TemplatesLoadFailedId,
		mdMsg: `
# Failed to load path templates!

The templates file could not be parsed or one of its definitions is invalid.

## Common issues:
- Malformed YAML (bad indentation, missing colons)
- A key with an unknown type (valid types: str, int, alphanum)
- A template referencing an unknown key or an unknown @include

## Things you can try:
- Check the error message above for the offending key or template name
- List the templates that do load:
~~~
$ texpub template list
~~~

## Example definitions:
~~~yaml
keys:
  Asset: {type: alphanum}
  version: {type: int, format: "03"}

templates:
  asset_root: "assets/{Asset}/{task_name}"
  texture_publish: "@asset_root/publish/textures/v{version}/{texture_set}_{texture_map}_{colorspace}.{extension}"
~~~`,
	}

	templateCycleIssue = &Issue{
		id: TemplateCycleId,
		mdMsg: `
# Template include cycle detected!

Your templates reference each other through @includes in a cycle, so no
expansion order exists.

## Example of a cycle:
~~~yaml
templates:
  a: "@b/work"
  b: "@a/publish"   # Cycle: a -> b -> a
~~~

## Things you can try:
- Review the @include references in your templates file
- Break the cycle by inlining one of the templates`,
	}

	invalidPresetIssue = &Issue{
		id: InvalidPresetId,
		mdMsg: `
# Export preset not publishable!

Only presets whose name starts with the configured prefix ("shotgrid" by
default) produce files that conform to the publish naming convention.

## Things you can try:
- Pick a preset with the expected prefix:
~~~
$ texpub publish textures --preset shotgrid_pbr
~~~

- Or change the accepted prefix in your configuration:
~~~cue
preset_prefix: "shotgrid"
~~~`,
	}

	exportHookFailedIssue = &Issue{
		id: ExportHookFailedId,
		mdMsg: `
# Export hook failed!

The configured export hook exited with an error, so no files were published.

## Common causes:
- The authoring application is not running or not reachable
- The hook script has a syntax error
- The hook lacks permission to write into the export area

## Things you can try:
- Run with verbose mode to see the hook's output:
~~~
$ texpub --verbose publish textures
~~~

- Test the hook script by hand with the same environment variables
  (TEXPUB_EXPORT_PRESET, TEXPUB_EXPORT_PATH)`,
	}

	emptyExportIssue = &Issue{
		id: EmptyExportId,
		mdMsg: `
# Nothing to publish!

The export area contains no texture files, so there is nothing to version
and copy.

## Things you can try:
- Check that the export hook actually wrote files
- Inspect the export work area:
~~~
$ texpub template resolve textures_export_work_area
~~~

- Re-run the export with a preset that produces output`,
	}

	filenameMismatchIssue = &Issue{
		id: FilenameMismatchId,
		mdMsg: `
# Exported filename does not match the naming convention!

Every exported file must be named
` + "`<textureSet>_<map>_<colorspace>[.<udim>].<ext>`" + ` where the UDIM tile,
when present, is exactly four digits. Publishing aborts rather than guess at
a file's identity.

## Examples:
~~~
hull_BaseColor_sRGB.png         OK
hull_Normal_raw.1001.png        OK (tiled)
hull_Normal_raw.101.png         rejected (3-digit tile)
hull-BaseColor.png              rejected (no map/colorspace tokens)
~~~

## Things you can try:
- Fix the export preset so map and colorspace names contain no "_" or "."
- Remove stray files from the export area and retry`,
	}

	inconsistentTextureSetIssue = &Issue{
		id: InconsistentTextureSetId,
		mdMsg: `
# Inconsistent texture set!

A texture map mixes tiled and untiled files, or the same tile appears twice.
Each map must be either a single untiled file or a group of distinct UDIM
tiles.

## Things you can try:
- Check the export area for leftovers from a previous export
- Clear the export area and re-run the export`,
	}

	versionQueryFailedIssue = &Issue{
		id: VersionQueryFailedId,
		mdMsg: `
# Could not determine the next version!

Scanning the publish area for existing versions failed. Publishing never
guesses a version, so the attempt was aborted.

## Common causes:
- The publish root is on an unreachable network mount
- A permission problem while listing directories

## Things you can try:
- Check that the publish root is mounted and readable
- Inspect existing versions:
~~~
$ texpub versions <asset> <task>
~~~`,
	}

	publishCommitFailedIssue = &Issue{
		id: PublishCommitFailedId,
		mdMsg: `
# Publish commit failed!

Copying files into the publish area failed part way through. All partially
copied files for this attempt were rolled back; the work area was not
touched.

## Common causes:
- Disk full on the publish volume
- Permission denied on the version directory
- The operation timed out

## Things you can try:
- Check free space and permissions on the publish root
- Retry the publish; a new version number will be used`,
	}

	registrationFailedIssue = &Issue{
		id: RegistrationFailedId,
		mdMsg: `
# Record registration failed after files were copied!

The published files were committed to the publish area but creating registry
records for them failed. The files are kept on disk; the error message lists
every committed path so the records can be created by hand or the files
removed.

## Things you can try:
- Check that the registry root is writable
- Re-run the publish once the registry is reachable (a new version is used)
- Clean up the listed files if this version should not exist`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The publish or registry root is owned by another user
- The export area is read-only

## Things you can try:
- Check directory permissions on the configured roots
- Run texpub as a user with write access to the publish volume`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		templatesLoadFailedIssue.Id():    templatesLoadFailedIssue,
		templateCycleIssue.Id():          templateCycleIssue,
		invalidPresetIssue.Id():          invalidPresetIssue,
		exportHookFailedIssue.Id():       exportHookFailedIssue,
		emptyExportIssue.Id():            emptyExportIssue,
		filenameMismatchIssue.Id():       filenameMismatchIssue,
		inconsistentTextureSetIssue.Id(): inconsistentTextureSetIssue,
		versionQueryFailedIssue.Id():     versionQueryFailedIssue,
		publishCommitFailedIssue.Id():    publishCommitFailedIssue,
		registrationFailedIssue.Id():     registrationFailedIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
