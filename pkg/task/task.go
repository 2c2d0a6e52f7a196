// Package task provides the named task graph the pipeline is compiled
// into: a registry mapping task names to prerequisites and actions, and
// a runner that walks it in dependency order.
package task

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Action is a task's side effect. Nil means the task only groups its
// prerequisites.
type Action func(ctx context.Context) error

// Task is one node of the graph. Names are hierarchical and
// colon-separated, e.g. "image:app:builder".
type Task struct {
	Name   string
	Deps   []string
	Action Action
}

// Registry holds the full task graph. Tasks are defined once during
// startup; after Prune and Validate the registry is effectively frozen.
type Registry struct {
	tasks map[string]*Task
	order []string // definition order, for stable listing
}

func NewRegistry() *Registry {
	return &Registry{tasks: map[string]*Task{}}
}

// Define registers a task. Redefining a name replaces its action but
// merges the dependency lists, so umbrella tasks can accumulate deps.
func (r *Registry) Define(name string, deps []string, action Action) *Task {
	if existing, ok := r.tasks[name]; ok {
		existing.Deps = mergeDeps(existing.Deps, deps)
		if action != nil {
			existing.Action = action
		}
		return existing
	}
	t := &Task{Name: name, Deps: mergeDeps(nil, deps), Action: action}
	r.tasks[name] = t
	r.order = append(r.order, name)
	return t
}

func mergeDeps(existing, add []string) []string {
	seen := map[string]struct{}{}
	for _, d := range existing {
		seen[d] = struct{}{}
	}
	for _, d := range add {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		existing = append(existing, d)
	}
	return existing
}

// Get returns a task by name.
func (r *Registry) Get(name string) (*Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns all task names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithPrefix returns the sorted names of all tasks whose full name
// starts with prefix.
func (r *Registry) WithPrefix(prefix string) []string {
	var names []string
	for name := range r.tasks {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// WithPrefixDepth is WithPrefix restricted to names with at most depth
// additional colon-separated segments after the prefix. With depth 1,
// prefix "dockerfile:" matches "dockerfile:x" but not
// "dockerfile:x:latest".
func (r *Registry) WithPrefixDepth(prefix string, depth int) []string {
	var names []string
	for _, name := range r.WithPrefix(prefix) {
		rest := strings.TrimPrefix(name, prefix)
		if rest != "" && strings.Count(rest, ":") < depth {
			names = append(names, name)
		}
	}
	return names
}

// Prune drops dependency edges pointing at tasks that were never
// defined and returns them as "task -> missing" strings. A role slot an
// image never filled produces such an edge; dropping it mirrors how
// role resolution itself degrades silently.
func (r *Registry) Prune() []string {
	var dropped []string
	for _, name := range r.order {
		t := r.tasks[name]
		kept := t.Deps[:0]
		for _, dep := range t.Deps {
			if _, ok := r.tasks[dep]; ok {
				kept = append(kept, dep)
			} else {
				dropped = append(dropped, t.Name+" -> "+dep)
			}
		}
		t.Deps = kept
	}
	sort.Strings(dropped)
	return dropped
}

// Validate checks that every remaining dependency exists and that the
// graph has no cycles. Run it after Prune and before execution.
func (r *Registry) Validate() error {
	for _, t := range r.tasks {
		for _, dep := range t.Deps {
			if _, ok := r.tasks[dep]; !ok {
				return fmt.Errorf("task %q depends on undefined task %q", t.Name, dep)
			}
		}
	}
	return r.checkAcyclic()
}

const (
	unvisited = iota
	visiting
	done
)

func (r *Registry) checkAcyclic() error {
	state := map[string]int{}

	var visit func(name string, trail []string) error
	visit = func(name string, trail []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle: %s", strings.Join(append(trail, name), " -> "))
		}
		state[name] = visiting
		for _, dep := range r.tasks[name].Deps {
			if err := visit(dep, append(trail, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range r.Names() {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}
