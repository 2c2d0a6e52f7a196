package roles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgagor/staged-dockerfiles/pkg/catalog"
	"github.com/tgagor/staged-dockerfiles/pkg/config"
	"github.com/tgagor/staged-dockerfiles/pkg/roles"
)

func scan(t *testing.T, files ...string) (*catalog.Catalog, *config.Config) {
	t.Helper()
	workdir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(workdir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("FROM scratch\n"), 0o644))
	}
	cfg := config.New()
	cfg.Owner = "owner"
	cfg.WorkDir = workdir
	cfg.SourceDir = filepath.Join(workdir, "src")
	cfg.ImageDir = filepath.Join(workdir, "images")
	cfg.PackageDir = filepath.Join(workdir, "pkg")

	cat, err := catalog.Scan(cfg)
	require.NoError(t, err)
	return cat, cfg
}

func TestFallbackChainPackagerOnly(t *testing.T) {
	// catalog {"x": {"packager"}}: no builder, no runtime, no latest
	cat, cfg := scan(t, "images/x/packager/Dockerfile")
	r := roles.New(cat, cfg)

	assert.Equal(t, "x:latest", r.Runtime("x"))
	assert.Equal(t, "x:latest", r.Builder("x"))
	// literal presence wins over fallback
	assert.Equal(t, "packager", r.Packager("x"))
}

func TestFallbackChainFullyPopulated(t *testing.T) {
	cat, cfg := scan(t,
		"images/x/builder/Dockerfile",
		"images/x/packager/Dockerfile",
		"images/x/runtime/Dockerfile",
		"images/x/latest/Dockerfile",
	)
	r := roles.New(cat, cfg)

	assert.Equal(t, "runtime", r.Runtime("x"))
	assert.Equal(t, "builder", r.Builder("x"))
	assert.Equal(t, "packager", r.Packager("x"))
}

func TestFallbackChainBuilderOnly(t *testing.T) {
	cat, cfg := scan(t, "images/x/builder/Dockerfile")
	r := roles.New(cat, cfg)

	assert.Equal(t, "x:latest", r.Runtime("x"))
	assert.Equal(t, "builder", r.Builder("x"))
	// packager degrades to builder before runtime
	assert.Equal(t, "builder", r.Packager("x"))
}

func TestUnknownImageDegradesAllTheWay(t *testing.T) {
	cat, cfg := scan(t)
	r := roles.New(cat, cfg)

	assert.Equal(t, "ghost:latest", r.Runtime("ghost"))
	assert.Equal(t, "ghost:latest", r.Builder("ghost"))
	assert.Equal(t, "ghost:latest", r.Packager("ghost"))
}

func TestConfigurableRoleNames(t *testing.T) {
	cat, cfg := scan(t, "images/x/compile/Dockerfile")
	cfg.BuilderTag = "compile"
	r := roles.New(cat, cfg)

	assert.Equal(t, "compile", r.Builder("x"))
}

func TestRunnable(t *testing.T) {
	cat, cfg := scan(t, "images/x/builder/Dockerfile")
	r := roles.New(cat, cfg)

	// bare tag gets image name and owner prepended
	assert.Equal(t, "owner/x:builder", r.Runnable("x", r.Builder("x")))
	// fallback reference only gets the owner
	assert.Equal(t, "owner/x:latest", r.Runnable("x", r.Runtime("x")))
}
