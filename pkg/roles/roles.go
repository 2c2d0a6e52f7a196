// Package roles resolves which of an image's tags serves a pipeline
// role. An image directory doesn't have to define all three roles:
// packager degrades to builder, builder to runtime, and runtime to a
// bare ":latest" reference as the last resort.
package roles

import (
	"strings"

	"github.com/tgagor/staged-dockerfiles/pkg/catalog"
	"github.com/tgagor/staged-dockerfiles/pkg/config"
	"github.com/tgagor/staged-dockerfiles/pkg/reference"
)

// Resolver answers role lookups against a frozen catalog.
type Resolver struct {
	cat *catalog.Catalog
	cfg *config.Config
}

func New(cat *catalog.Catalog, cfg *config.Config) *Resolver {
	return &Resolver{cat: cat, cfg: cfg}
}

// Runtime returns the runtime tag of img if the catalog defines one,
// otherwise the full reference "<img>:latest". Returning a reference
// rather than a tag in the fallback case is deliberate: the caller ends
// up running the canonical image when no runtime stage exists.
func (r *Resolver) Runtime(img string) string {
	if r.cat.HasTag(img, r.cfg.RuntimeTag) {
		return r.cfg.RuntimeTag
	}
	return img + ":" + reference.DefaultTag
}

// Builder returns the builder tag of img, degrading to Runtime.
func (r *Resolver) Builder(img string) string {
	if r.cat.HasTag(img, r.cfg.BuilderTag) {
		return r.cfg.BuilderTag
	}
	return r.Runtime(img)
}

// Packager returns the packager tag of img, degrading to Builder.
func (r *Resolver) Packager(img string) string {
	if r.cat.HasTag(img, r.cfg.PackagerTag) {
		return r.cfg.PackagerTag
	}
	return r.Builder(img)
}

// Runnable turns a resolved role value into the owner-qualified
// reference the container engine runs. Resolved values are either a
// bare tag ("builder") or already a full reference ("app:latest").
func (r *Resolver) Runnable(img, resolved string) string {
	if !strings.Contains(resolved, ":") {
		resolved = img + ":" + resolved
	}
	return r.cfg.Owner + "/" + resolved
}
