package task

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Runner executes tasks from a registry in dependency order: depth-first
// over the prerequisites, each task at most once per invocation, and a
// prerequisite failure aborts everything that depends on it.
//
// Execution is serial. Task identity and dependency edges are the only
// contract here, so a parallel walk would be a drop-in replacement.
type Runner struct {
	reg    *Registry
	dryRun bool
	ran    map[string]struct{}
}

func NewRunner(reg *Registry) *Runner {
	return &Runner{reg: reg, ran: map[string]struct{}{}}
}

func (r *Runner) DryRun(flag bool) *Runner {
	r.dryRun = flag
	return r
}

// Run executes the named tasks and their transitive prerequisites.
func (r *Runner) Run(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := r.run(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, name string) error {
	if _, ok := r.ran[name]; ok {
		return nil
	}

	t, ok := r.reg.Get(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}

	for _, dep := range t.Deps {
		if err := r.run(ctx, dep); err != nil {
			return err
		}
	}

	// mark before running: a failed task must not re-run within the
	// same invocation either
	r.ran[name] = struct{}{}

	if t.Action == nil {
		return nil
	}
	if r.dryRun {
		log.Info().Str("task", name).Msg("DRY-RUN: Would run")
		return nil
	}

	log.Debug().Str("task", name).Msg("Running")
	if err := t.Action(ctx); err != nil {
		log.Error().Err(err).Str("task", name).Msg("Task failed")
		return err
	}
	return nil
}
