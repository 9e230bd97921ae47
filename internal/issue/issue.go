// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigNotFoundId
	ModuleNotFoundId
	ProvisionFailedId
	CapabilityNotFoundId
	PlatformNotSupportedId
	PermissionDeniedId
	InvalidLayoutId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation pages about this issue type
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

// Render renders the issue page as terminal markdown. An empty stylePath
// selects glamour's automatic style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The capgate configuration file could not be read or does not match the schema.

## Things you can try:
- Check the CUE syntax of your config file
- Compare it with a freshly generated one:
~~~
$ capgate config init --force
$ capgate config show
~~~
- Environment overrides use the CAPGATE_ prefix (e.g. CAPGATE_HOST_TARGET=Win64)`,
	}

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# No configuration file found!

capgate is running with its built-in defaults.

## Search locations (in order of precedence):
1. The file given with --config
2. The user config directory (see ` + "`capgate config path`" + `)
3. ./capgate.cue in the current directory

## Things you can try:
- Create a config file:
~~~
$ capgate config init
~~~`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

The module you asked for is not declared in the configuration.

## Things you can try:
- List the configured modules:
~~~
$ capgate config show
~~~
- Check the spelling; module names are case-sensitive`,
	}

	provisionFailedIssue = &Issue{
		id: ProvisionFailedId,
		mdMsg: `
# Failed to provision the fallback directory!

Every configuration pass guarantees that the fallback third-party directory
exists under the component directory, and this pass could not create it.

## Things you can try:
- Make sure the component directory is writable
- Remove any regular file that has the same name as the third-party or leaf directory
- Check the ` + "`fallback`" + ` block of the module in your config file`,
	}

	capabilityNotFoundIssue = &Issue{
		id: CapabilityNotFoundId,
		mdMsg: `
# Capability not found!

None of the candidate roots contained the requested plugin.

## Search order:
1. Each additional plugin directory: <dir>/<name>, then <dir>/<name>/Source/ThirdParty
2. <engine>/Plugins/<name>
3. <project>/Plugins/<name>
4. Subdirectories of <project>/Plugins whose name contains <name>, or that contain Source/<name>
5. Sibling directories of the component whose name contains <name>

## Things you can try:
- Install the plugin into one of the locations above
- Add its parent directory to ` + "`host.plugin_dirs`" + `
- Run with --verbose to see every probed root`,
	}

	platformNotSupportedIssue = &Issue{
		id: PlatformNotSupportedId,
		mdMsg: `
# Platform not supported!

The module only probes for optional capabilities on its allowed target
platforms. On this target every capability is reported as unavailable.

## Things you can try:
- Check the module's ` + "`platforms`" + ` list in your config file
- Pass the intended target explicitly with --target`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

capgate could not read a candidate root or write the fallback directory.

## Things you can try:
- Check the permissions of the directories listed in the diagnostics
- Run capgate as the same user that runs the build`,
	}

	invalidLayoutIssue = &Issue{
		id: InvalidLayoutId,
		mdMsg: `
# Invalid host layout!

One of the host directories is empty or could not be expanded.

## Things you can try:
- Check the ` + "`host`" + ` block of your config file
- Make sure environment variables referenced in paths (e.g. $ENGINE_ROOT) are set`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Failed to watch for changes!

The file watcher could not be started.

## Things you can try:
- Make sure the watched directories exist
- On Linux, raise fs.inotify.max_user_watches if you watch many directories`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#faq"},
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		configNotFoundIssue.Id():       configNotFoundIssue,
		moduleNotFoundIssue.Id():       moduleNotFoundIssue,
		provisionFailedIssue.Id():      provisionFailedIssue,
		capabilityNotFoundIssue.Id():   capabilityNotFoundIssue,
		platformNotSupportedIssue.Id(): platformNotSupportedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
		invalidLayoutIssue.Id():        invalidLayoutIssue,
		watchFailedIssue.Id():          watchFailedIssue,
	}
)

// Values returns all issues ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
