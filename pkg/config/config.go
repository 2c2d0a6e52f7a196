package config

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Default role tag names. An image directory that defines a tag with one
// of these names binds that tag to the corresponding pipeline role.
const (
	DefaultBuilderTag  = "builder"
	DefaultPackagerTag = "packager"
	DefaultRuntimeTag  = "runtime"
)

// Environment keys recognized by FromEnv. All optional.
const (
	EnvOwner       = "SD_OWNER"
	EnvWorkDir     = "SD_WORKDIR"
	EnvSourceDir   = "SD_SRC_DIR"
	EnvImageDir    = "SD_IMAGE_DIR"
	EnvPackageDir  = "SD_PKG_DIR"
	EnvBuilderTag  = "SD_BUILDER_TAG"
	EnvPackagerTag = "SD_PACKAGER_TAG"
	EnvRuntimeTag  = "SD_RUNTIME_TAG"
	EnvMakeDirs    = "SD_MKDIR"
)

// Config holds everything the graph builder needs to know about its
// surroundings. It is populated once, before any task is defined, and
// passed by reference afterwards. Nothing reads the environment after
// FromEnv returns.
type Config struct {
	Owner       string `yaml:"owner"`
	WorkDir     string `yaml:"workdir"`
	SourceDir   string `yaml:"src_dir"`
	ImageDir    string `yaml:"image_dir"`
	PackageDir  string `yaml:"pkg_dir"`
	BuilderTag  string `yaml:"builder_tag"`
	PackagerTag string `yaml:"packager_tag"`
	RuntimeTag  string `yaml:"runtime_tag"`

	// MakeDirs controls whether missing source/image/package roots are
	// created during the scan. Env values "false" and "nil" disable it,
	// anything else (including absence) leaves it on.
	MakeDirs bool `yaml:"mkdir"`
}

// New returns a Config carrying only defaults.
func New() *Config {
	return &Config{
		Owner:       currentUser(),
		WorkDir:     ".",
		BuilderTag:  DefaultBuilderTag,
		PackagerTag: DefaultPackagerTag,
		RuntimeTag:  DefaultRuntimeTag,
		MakeDirs:    true,
	}
}

// Load reads an optional YAML build file over the defaults. An empty
// filename is not an error, it just means "defaults only".
func Load(filename string) (*Config, error) {
	cfg := New()
	if filename == "" {
		return cfg, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		log.Error().Err(err).Msg("Error loading config")
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		log.Error().Err(err).Msg("Decoding YAML " + filename + " failed! Check syntax and try again")
		return nil, err
	}
	return cfg, nil
}

// FromEnv applies environment overrides on top of c and resolves the
// directory roots to their conventional locations. Call it exactly
// once; the result is final.
func (c *Config) FromEnv() *Config {
	setIfPresent(&c.Owner, EnvOwner)
	setIfPresent(&c.WorkDir, EnvWorkDir)
	setIfPresent(&c.SourceDir, EnvSourceDir)
	setIfPresent(&c.ImageDir, EnvImageDir)
	setIfPresent(&c.PackageDir, EnvPackageDir)
	setIfPresent(&c.BuilderTag, EnvBuilderTag)
	setIfPresent(&c.PackagerTag, EnvPackagerTag)
	setIfPresent(&c.RuntimeTag, EnvRuntimeTag)

	if v, ok := os.LookupEnv(EnvMakeDirs); ok {
		c.MakeDirs = !disables(v)
	}

	if c.SourceDir == "" {
		c.SourceDir = firstDir(c.WorkDir, "src", "sources")
	}
	if c.ImageDir == "" {
		c.ImageDir = firstDir(c.WorkDir, "images", "dockerfiles")
	}
	if c.PackageDir == "" {
		c.PackageDir = firstDir(c.WorkDir, "pkg", "packages")
	}
	return c
}

// disables reports whether an env value turns a toggle off. The "nil"
// spelling is accepted for compatibility with older setups.
func disables(value string) bool {
	return value == "false" || value == "nil"
}

func setIfPresent(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// firstDir returns the first of the candidate subdirectories of root
// that exists, or the first candidate as the conventional fallback.
func firstDir(root string, candidates ...string) string {
	for _, c := range candidates {
		p := filepath.Join(root, c)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return filepath.Join(root, candidates[0])
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
