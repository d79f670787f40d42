// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DescriptorNotFoundId Id = iota + 1
	DescriptorParseErrorId
	BaseImageUnresolvableId
	UnknownIdentityId
	StepExecutionFailedId
	ContainerEngineNotFoundId
	ConfigLoadFailedId
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

// Title returns the first markdown heading of the issue, for catalog listings.
func (i *Issue) Title() string {
	for _, line := range strings.Split(string(i.mdMsg), "\n") {
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			return rest
		}
	}
	return ""
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

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# No build descriptor found!

We searched for a build descriptor but couldn't find one at the expected location.

## Search locations:
1. The path given via -f/--file
2. ./Stratumfile in the current directory

## Things you can try:
- Point at the descriptor explicitly:
~~~
$ stratum build -f path/to/Stratumfile -t myimage:latest
~~~

## Example descriptor:
~~~dockerfile
FROM andrius/asterisk:latest

USER root

RUN apt-get update && \
    apt-get install -y unixodbc odbc-mariadb && \
    rm -rf /var/lib/apt/lists/*

USER asterisk
~~~`,
	}

	descriptorParseErrorIssue = &Issue{
		id: DescriptorParseErrorId,
		mdMsg: `
# Failed to parse the build descriptor!

The descriptor contains a structural or shell syntax error.

## Common issues:
- A directive other than FROM, USER, RUN, or a # comment
- A USER or RUN directive before the FROM line
- More than one FROM directive
- Invalid shell syntax in a RUN payload (unterminated quote, dangling &&)

## Things you can try:
- Check the reported line number against the descriptor
- Validate long RUN chains by pasting them into a shell with 'sh -n'
- Run 'stratum plan -f <file>' to see how far parsing gets`,
	}

	baseImageUnresolvableIssue = &Issue{
		id: BaseImageUnresolvableId,
		mdMsg: `
# Base image could not be resolved!

The FROM reference could not be pulled or found locally. The pipeline never
started: no step has been applied and no image was produced.

## Things you can try:
- Check the reference for typos ('repository:tag')
- Pull the image manually to see the registry's error:
~~~
$ docker pull <image-ref>
~~~
- Verify registry credentials and network access
- For local-only images, make sure they exist: 'docker images'`,
	}

	unknownIdentityIssue = &Issue{
		id: UnknownIdentityId,
		mdMsg: `
# Unknown identity!

A USER directive names a principal that does not exist in the image.

## Things you can try:
- Check the spelling of the user name
- Inspect which users the image defines:
~~~
$ docker run --rm <image-ref> cat /etc/passwd
~~~
- Use a numeric UID, which never requires an /etc/passwd entry
- Disable strict identity checking ('strict_identities: false' in config)
  to defer resolution to the engine, matching plain Dockerfile behavior`,
	}

	stepExecutionFailedIssue = &Issue{
		id: StepExecutionFailedId,
		mdMsg: `
# Provisioning step failed!

A RUN step exited non-zero. The whole step is discarded: no partial layer is
committed, later steps never execute, and no resulting image is produced.
Layers committed by earlier steps remain in the engine's store.

## Common causes:
- A package name that doesn't exist in the base image's repositories
- Stale package indexes (missing 'apt-get update' before install)
- Insufficient privileges (missing 'USER root' before the step)
- Network failures inside the build container

## Things you can try:
- Re-run with --verbose to see the full command output
- Reproduce interactively from the last good layer:
~~~
$ docker run --rm -it <base-or-intermediate-image> sh
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

stratum needs a container engine to replay provisioning steps, but none is
available.

## Supported container engines:
- **Docker**
- **Podman** (rootless works)

## Things you can try:
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `

- Configure your preferred engine in ~/.config/stratum/config.cue:
~~~cue
container_engine: "podman"  // or "docker"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the stratum configuration file.

## Configuration file locations:
- Linux: ~/.config/stratum/config.cue
- macOS: ~/Library/Application Support/stratum/config.cue
- Windows: %APPDATA%\stratum\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ stratum config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
container_engine: "docker"
strict_identities: false

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	issues = map[Id]*Issue{
		descriptorNotFoundIssue.Id():      descriptorNotFoundIssue,
		descriptorParseErrorIssue.Id():    descriptorParseErrorIssue,
		baseImageUnresolvableIssue.Id():   baseImageUnresolvableIssue,
		unknownIdentityIssue.Id():         unknownIdentityIssue,
		stepExecutionFailedIssue.Id():     stepExecutionFailedIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
