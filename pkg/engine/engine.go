// Package engine invokes the external container engine. Build and Run
// are the whole contract: both shell out, both succeed or fail as a
// unit, a non-zero exit is the task's failure.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/tgagor/staged-dockerfiles/pkg/cmd"
)

// Mount is a volume mount handed to Run.
type Mount struct {
	Source string
	Target string
}

// Engine abstracts the container engine binary.
type Engine interface {
	// Build builds the image at contextDir and tags it with tag.
	Build(ctx context.Context, contextDir, tag string, labels map[string]string) error

	// Run starts a container from image with the given volume mounts
	// and waits for it to finish.
	Run(ctx context.Context, image string, mounts ...Mount) error
}

// CLI drives any docker-compatible command line engine. Podman accepts
// the same build/run surface, so the binary name is the only switch.
type CLI struct {
	binary  string
	verbose bool
}

// New returns an engine for the named binary. Empty means docker.
func New(binary string) *CLI {
	if binary == "" {
		binary = "docker"
	}
	return &CLI{binary: binary}
}

func (e *CLI) SetVerbose(verbose bool) *CLI {
	e.verbose = verbose
	return e
}

func (e *CLI) Build(ctx context.Context, contextDir, tag string, labels map[string]string) error {
	_, err := e.buildCmd(contextDir, tag, labels).Run(ctx)
	return err
}

func (e *CLI) Run(ctx context.Context, image string, mounts ...Mount) error {
	_, err := e.runCmd(image, mounts...).Run(ctx)
	return err
}

func (e *CLI) buildCmd(contextDir, tag string, labels map[string]string) *cmd.Cmd {
	return cmd.New(e.binary).Arg("build").
		Arg("-t", tag).
		Arg(labelsToArgs(labels)...).
		Arg(contextDir).
		PreInfo("Building " + tag).
		SetVerbose(e.verbose)
}

func (e *CLI) runCmd(image string, mounts ...Mount) *cmd.Cmd {
	runner := cmd.New(e.binary).Arg("run", "--rm")
	for _, m := range mounts {
		runner.Arg("-v", m.Source+":"+m.Target)
	}
	return runner.Arg(image).
		PreInfo("Running " + image).
		SetVerbose(e.verbose)
}

// labelsToArgs renders labels sorted by key so repeated invocations
// produce identical command lines.
func labelsToArgs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, labels[k]))
	}
	return args
}
