package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgagor/staged-dockerfiles/pkg/task"
)

func TestDefineMergesDeps(t *testing.T) {
	reg := task.NewRegistry()

	reg.Define("image:x", []string{"image:x:builder"}, nil)
	reg.Define("image:x", []string{"image:x:latest", "image:x:builder"}, nil)

	got, ok := reg.Get("image:x")
	require.True(t, ok)
	assert.Equal(t, []string{"image:x:builder", "image:x:latest"}, got.Deps)
}

func TestWithPrefix(t *testing.T) {
	reg := task.NewRegistry()
	reg.Define("image:x:builder", nil, nil)
	reg.Define("image:x", nil, nil)
	reg.Define("build:x", nil, nil)

	assert.Equal(t, []string{"image:x", "image:x:builder"}, reg.WithPrefix("image:"))
	assert.Equal(t, []string{"build:x"}, reg.WithPrefix("build:"))
	assert.Empty(t, reg.WithPrefix("package:"))
}

func TestWithPrefixDepth(t *testing.T) {
	reg := task.NewRegistry()
	reg.Define("dockerfile:x", nil, nil)
	reg.Define("dockerfile:x:latest", nil, nil)
	reg.Define("dockerfile:y:builder", nil, nil)

	// depth 1 keeps the umbrella, drops the per-tag tasks
	assert.Equal(t, []string{"dockerfile:x"}, reg.WithPrefixDepth("dockerfile:", 1))
	// depth 2 keeps everything
	assert.Equal(t,
		[]string{"dockerfile:x", "dockerfile:x:latest", "dockerfile:y:builder"},
		reg.WithPrefixDepth("dockerfile:", 2))
}

func TestPruneDropsUndefinedDeps(t *testing.T) {
	reg := task.NewRegistry()
	reg.Define("image:app:latest", []string{"dockerfile:app:latest", "image:app:runtime"}, nil)
	reg.Define("dockerfile:app:latest", nil, nil)

	dropped := reg.Prune()

	assert.Equal(t, []string{"image:app:latest -> image:app:runtime"}, dropped)
	got, _ := reg.Get("image:app:latest")
	assert.Equal(t, []string{"dockerfile:app:latest"}, got.Deps)
	require.NoError(t, reg.Validate())
}

func TestValidateReportsUndefinedDep(t *testing.T) {
	reg := task.NewRegistry()
	reg.Define("a", []string{"ghost"}, nil)

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestValidateDetectsCycle(t *testing.T) {
	reg := task.NewRegistry()
	reg.Define("a", []string{"b"}, nil)
	reg.Define("b", []string{"c"}, nil)
	reg.Define("c", []string{"a"}, nil)

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidateAcceptsDiamond(t *testing.T) {
	reg := task.NewRegistry()
	reg.Define("top", []string{"left", "right"}, nil)
	reg.Define("left", []string{"bottom"}, nil)
	reg.Define("right", []string{"bottom"}, nil)
	reg.Define("bottom", nil, nil)

	assert.NoError(t, reg.Validate())
}
