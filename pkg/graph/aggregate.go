package graph

// Aggregate entry point names, the automation-visible surface next to
// the per-image and per-source tasks.
const (
	AggregateImages      = "images"
	AggregateBuilds      = "build"
	AggregatePackages    = "packages"
	AggregateDockerfiles = "dockerfiles"
	AggregateLinks       = "links"
	AggregateAll         = "all"
	AggregateDefault     = "default"
)

// aggregates defines the umbrella tasks over everything registered so
// far. The dockerfile and link groups are depth-limited: only one
// segment after the prefix, so per-image granularity without pulling in
// each tag.
func (b *builder) aggregates() {
	b.reg.Define(AggregateImages, b.reg.WithPrefix("image:"), nil)
	b.reg.Define(AggregateBuilds, b.reg.WithPrefix("build:"), nil)
	b.reg.Define(AggregatePackages, b.reg.WithPrefix("package:"), nil)
	b.reg.Define(AggregateDockerfiles, b.reg.WithPrefixDepth("dockerfile:", 1), nil)
	b.reg.Define(AggregateLinks, b.reg.WithPrefixDepth("link:", 1), nil)

	// everything: all images, then all builds, then all packages
	b.reg.Define(AggregateAll, []string{AggregateImages, AggregateBuilds, AggregatePackages}, nil)
	b.reg.Define(AggregateDefault, []string{AggregateAll}, nil)
}
