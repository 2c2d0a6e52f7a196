package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgagor/staged-dockerfiles/pkg/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, ".", cfg.WorkDir)
	assert.Equal(t, "builder", cfg.BuilderTag)
	assert.Equal(t, "packager", cfg.PackagerTag)
	assert.Equal(t, "runtime", cfg.RuntimeTag)
	assert.True(t, cfg.MakeDirs)
	assert.NotEmpty(t, cfg.Owner)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvOwner, "acme")
	t.Setenv(config.EnvBuilderTag, "compile")
	t.Setenv(config.EnvSourceDir, "/tmp/my-src")

	cfg := config.New().FromEnv()

	assert.Equal(t, "acme", cfg.Owner)
	assert.Equal(t, "compile", cfg.BuilderTag)
	assert.Equal(t, "/tmp/my-src", cfg.SourceDir)
	// untouched fields keep defaults
	assert.Equal(t, "packager", cfg.PackagerTag)
}

func TestMakeDirsToggle(t *testing.T) {
	inputs := []string{
		"false",
		"nil",
		"true",
		"anything-else",
		"",
	}
	expected := []bool{
		false,
		false,
		true,
		true,
		true,
	}

	for i, input := range inputs {
		t.Setenv(config.EnvMakeDirs, input)
		cfg := config.New().FromEnv()
		assert.Equal(t, expected[i], cfg.MakeDirs, "value %q", input)
	}
}

func TestConventionalRoots(t *testing.T) {
	workdir := t.TempDir()
	// only the second conventional name exists
	require.NoError(t, os.Mkdir(filepath.Join(workdir, "sources"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(workdir, "images"), 0o755))

	t.Setenv(config.EnvWorkDir, workdir)

	cfg := config.New().FromEnv()

	assert.Equal(t, filepath.Join(workdir, "sources"), cfg.SourceDir)
	assert.Equal(t, filepath.Join(workdir, "images"), cfg.ImageDir)
	// nothing exists for packages, so the first candidate is the fallback
	assert.Equal(t, filepath.Join(workdir, "pkg"), cfg.PackageDir)
}

func TestLoadBuildFile(t *testing.T) {
	workdir := t.TempDir()
	buildFile := filepath.Join(workdir, "build.yaml")
	content := "owner: someone\nbuilder_tag: compile\n"
	require.NoError(t, os.WriteFile(buildFile, []byte(content), 0o644))

	cfg, err := config.Load(buildFile)
	require.NoError(t, err)

	assert.Equal(t, "someone", cfg.Owner)
	assert.Equal(t, "compile", cfg.BuilderTag)
	assert.Equal(t, "runtime", cfg.RuntimeTag)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := config.Load("no-such-build.yaml")
	assert.Error(t, err)
}
