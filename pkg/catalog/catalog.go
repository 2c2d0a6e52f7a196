// Package catalog discovers the build inventory from the directory
// layout: which source projects exist and which (image, tag) pairs carry
// a Dockerfile.
//
// Discovery convention: <image-root>/<name>/<tag>/Dockerfile[.erb], with
// <image-root>/<name>/Dockerfile[.erb] meaning an implicit "latest" tag.
// The scan runs once at startup; the resulting Catalog is read-only.
package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tgagor/staged-dockerfiles/pkg/config"
	"github.com/tgagor/staged-dockerfiles/pkg/reference"
	"github.com/tgagor/staged-dockerfiles/pkg/util"
)

// TemplateSuffix marks a Dockerfile that needs rendering before the
// engine can use it.
const TemplateSuffix = ".erb"

const dockerfileName = "Dockerfile"

// Entry is one discovered (image, tag) pair: where its build context
// lives and where its Dockerfile (and optional template) sit.
type Entry struct {
	Name       string
	Tag        string
	Dir        string // build context directory
	Dockerfile string // rendered Dockerfile path
	Template   string // Dockerfile + ".erb", whether or not it exists
}

// Catalog is the frozen discovery result.
type Catalog struct {
	images  map[string]map[string]Entry
	sources []string
}

// Scan walks the configured source and image roots and builds the
// catalog. Missing roots are created first unless cfg.MakeDirs is off.
func Scan(cfg *config.Config) (*Catalog, error) {
	if cfg.MakeDirs {
		if err := util.EnsureDir(cfg.SourceDir, cfg.ImageDir, cfg.PackageDir); err != nil {
			return nil, err
		}
	}

	c := &Catalog{images: map[string]map[string]Entry{}}

	if err := c.scanSources(cfg.SourceDir); err != nil {
		return nil, err
	}
	if err := c.scanImages(cfg.ImageDir); err != nil {
		return nil, err
	}

	log.Debug().
		Strs("sources", c.sources).
		Strs("images", c.Images()).
		Msg("Scanned")
	return c, nil
}

func (c *Catalog) scanSources(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.Error().Err(err).Str("dir", root).Msg("Failed to list sources")
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			c.sources = append(c.sources, e.Name())
		}
	}
	sort.Strings(c.sources)
	return nil
}

func (c *Catalog) scanImages(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if base != dockerfileName && base != dockerfileName+TemplateSuffix {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		ref := filepath.ToSlash(filepath.Dir(rel))
		if ref == "." {
			// Dockerfile directly in the image root has no name to hang
			// a catalog entry on
			log.Warn().Str("file", path).Msg("Skipping Dockerfile without image directory")
			return nil
		}

		name, tag := reference.Split(ref)
		c.add(Entry{
			Name:       name,
			Tag:        tag,
			Dir:        filepath.Dir(path),
			Dockerfile: filepath.Join(filepath.Dir(path), dockerfileName),
			Template:   filepath.Join(filepath.Dir(path), dockerfileName+TemplateSuffix),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("dir", root).Msg("Failed to scan images")
		return err
	}
	return nil
}

// add records an entry; duplicates for the same (name, tag) collapse,
// first discovery wins. WalkDir visits lexically, so repeated scans of
// an unchanged tree produce identical catalogs.
func (c *Catalog) add(e Entry) {
	tags, ok := c.images[e.Name]
	if !ok {
		tags = map[string]Entry{}
		c.images[e.Name] = tags
	}
	if _, exists := tags[e.Tag]; exists {
		return
	}
	tags[e.Tag] = e
}

// Images returns the discovered image names in sorted order.
func (c *Catalog) Images() []string {
	names := make([]string, 0, len(c.images))
	for name := range c.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tags returns the tag set for an image, sorted. Unknown images yield
// an empty set, never an error.
func (c *Catalog) Tags(img string) []string {
	entries, ok := c.images[img]
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(entries))
	for tag := range entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// HasTag reports whether img literally defines tag.
func (c *Catalog) HasTag(img, tag string) bool {
	_, ok := c.images[img][tag]
	return ok
}

// Entry returns the discovery record for (img, tag).
func (c *Catalog) Entry(img, tag string) (Entry, bool) {
	e, ok := c.images[img][tag]
	return e, ok
}

// Sources returns the discovered source project names, sorted.
func (c *Catalog) Sources() []string {
	out := make([]string, len(c.sources))
	copy(out, c.sources)
	return out
}

// HasSource reports whether a source project of that name exists.
func (c *Catalog) HasSource(src string) bool {
	for _, s := range c.sources {
		if s == src {
			return true
		}
	}
	return false
}

// String renders the catalog as "name: tag tag ..." lines, mostly for
// debug logging and the idempotence guarantee in tests.
func (c *Catalog) String() string {
	var b strings.Builder
	for _, name := range c.Images() {
		b.WriteString(name)
		b.WriteString(":")
		for _, tag := range c.Tags(name) {
			b.WriteString(" ")
			b.WriteString(tag)
		}
		b.WriteString("\n")
	}
	return b.String()
}
