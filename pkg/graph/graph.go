// Package graph compiles the scanned catalog into the task graph the
// runner executes. For every discovered image tag it derives render,
// link and image-build tasks; for every source project, build and
// package tasks; and on top of those the aggregate entry points.
package graph

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/tgagor/staged-dockerfiles/pkg/catalog"
	"github.com/tgagor/staged-dockerfiles/pkg/config"
	"github.com/tgagor/staged-dockerfiles/pkg/engine"
	"github.com/tgagor/staged-dockerfiles/pkg/oci"
	"github.com/tgagor/staged-dockerfiles/pkg/reference"
	"github.com/tgagor/staged-dockerfiles/pkg/roles"
	"github.com/tgagor/staged-dockerfiles/pkg/task"
	"github.com/tgagor/staged-dockerfiles/pkg/template"
	"github.com/tgagor/staged-dockerfiles/pkg/util"
)

type builder struct {
	cfg    *config.Config
	cat    *catalog.Catalog
	roles  *roles.Resolver
	eng    engine.Engine
	reg    *task.Registry
	labels map[string]string
}

// Build derives the full task graph from a frozen catalog. The
// returned registry still carries edges to role tasks no image defines;
// callers run Prune and Validate before execution.
func Build(cfg *config.Config, cat *catalog.Catalog, eng engine.Engine) *task.Registry {
	b := &builder{
		cfg:    cfg,
		cat:    cat,
		roles:  roles.New(cat, cfg),
		eng:    eng,
		reg:    task.NewRegistry(),
		labels: oci.Labels(cfg.Owner, cfg.WorkDir),
	}

	for _, img := range cat.Images() {
		b.imageTasks(img)
	}
	for _, src := range cat.Sources() {
		b.sourceTasks(src)
	}
	// aggregates collect by prefix, so they have to come last
	b.aggregates()
	return b.reg
}

func (b *builder) imageTasks(img string) {
	for _, tag := range b.cat.Tags(img) {
		entry, _ := b.cat.Entry(img, tag)

		render := "dockerfile:" + img + ":" + tag
		b.reg.Define(render, nil, b.renderAction(entry))

		link := "link:" + img + ":" + tag
		b.reg.Define(link, nil, b.linkAction(entry))

		deps := []string{render}
		switch tag {
		case b.cfg.PackagerTag:
			// packager images build atop the builder image
			deps = append(deps, "image:"+img+":"+b.cfg.BuilderTag)
		case reference.DefaultTag:
			// the distributed image needs the package built, linked
			// into its context, and the runtime base image in place
			deps = append(deps,
				"package:"+img,
				link,
				"image:"+img+":"+b.cfg.RuntimeTag,
			)
		}
		b.reg.Define("image:"+img+":"+tag, deps, b.imageAction(entry))

		// umbrella accumulates one dep per tag
		b.reg.Define("image:"+img, []string{"image:" + img + ":" + tag}, nil)
	}
}

func (b *builder) sourceTasks(src string) {
	var buildDeps []string
	// gate on literal presence, not on the fallback chain: an edge has
	// to point at a task that exists as the intended stage
	if b.cat.HasTag(src, b.cfg.BuilderTag) {
		buildDeps = append(buildDeps, "image:"+src+":"+b.cfg.BuilderTag)
	}
	b.reg.Define("build:"+src, buildDeps, b.buildSourceAction(src))

	pkgDeps := []string{"build:" + src}
	if b.cat.HasTag(src, b.cfg.PackagerTag) {
		pkgDeps = append(pkgDeps, "image:"+src+":"+b.cfg.PackagerTag)
	}
	b.reg.Define("package:"+src, pkgDeps, b.packageSourceAction(src))
}

// renderAction templates <dir>/Dockerfile.erb into <dir>/Dockerfile.
// No template means nothing to render, which is fine.
func (b *builder) renderAction(entry catalog.Entry) task.Action {
	return func(ctx context.Context) error {
		if !util.IsFile(entry.Template) {
			log.Debug().Str("dockerfile", entry.Dockerfile).Msg("No template, skipping render")
			return nil
		}
		log.Info().Str("dockerfile", entry.Dockerfile).Msg("Rendering")
		return template.RenderFile(entry.Template, entry.Dockerfile, b.templateVars(entry))
	}
}

func (b *builder) templateVars(entry catalog.Entry) map[string]interface{} {
	return map[string]interface{}{
		"owner": b.cfg.Owner,
		"image": entry.Name,
		"tag":   entry.Tag,
	}
}

// linkAction replaces the "pkg" entry inside the build context with a
// link to the shared package directory, so the Dockerfile can COPY
// packages out of it.
func (b *builder) linkAction(entry catalog.Entry) task.Action {
	return func(ctx context.Context) error {
		target := filepath.Join(entry.Dir, "pkg")
		if err := os.RemoveAll(target); err != nil {
			return err
		}
		source, err := filepath.Abs(b.cfg.PackageDir)
		if err != nil {
			return err
		}
		log.Debug().Str("source", source).Str("target", target).Msg("Linking package directory")
		return os.Symlink(source, target)
	}
}

func (b *builder) imageAction(entry catalog.Entry) task.Action {
	tag := b.cfg.Owner + "/" + entry.Name + ":" + entry.Tag
	return func(ctx context.Context) error {
		return b.eng.Build(ctx, entry.Dir, tag, b.labels)
	}
}

func (b *builder) buildSourceAction(src string) task.Action {
	return func(ctx context.Context) error {
		image := b.roles.Runnable(src, b.roles.Builder(src))
		return b.eng.Run(ctx, image, engine.Mount{
			Source: filepath.Join(b.cfg.SourceDir, src),
			Target: "/src",
		})
	}
}

func (b *builder) packageSourceAction(src string) task.Action {
	return func(ctx context.Context) error {
		image := b.roles.Runnable(src, b.roles.Packager(src))
		return b.eng.Run(ctx, image,
			engine.Mount{Source: filepath.Join(b.cfg.SourceDir, src), Target: "/src"},
			engine.Mount{Source: b.cfg.PackageDir, Target: "/pkg"},
		)
	}
}
