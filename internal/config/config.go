// Package config loads markspan.toml.
//
// The file is optional. Every key has a default, and a file only needs the
// keys it changes:
//
//	[markers]
//	qualifier = "check"
//	tolerant  = ["Output", "Prints"]
//
//	[render]
//	nfc = false
//
//	[cache]
//	enabled = false
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"markspan/internal/marker"
	"markspan/internal/render"
)

// FileName is the name searched for by Discover.
const FileName = "markspan.toml"

// Config is the resolved configuration.
type Config struct {
	Path string // "" when defaults are in effect
	Root string // directory of Path

	Markers marker.Names
	Render  render.Options
	Cache   Cache
	Files   Files
}

// Cache configures the on-disk result cache.
type Cache struct {
	Enabled bool
	Dir     string // "" selects the user cache directory
}

// Files selects which files of a directory are marker files.
type Files struct {
	Include []string // glob patterns matched against base names
	Exclude []string
}

type fileConfig struct {
	Markers markersSection `toml:"markers"`
	Render  renderSection  `toml:"render"`
	Cache   cacheSection   `toml:"cache"`
	Files   filesSection   `toml:"files"`
}

type markersSection struct {
	Qualifier string   `toml:"qualifier"`
	Tolerant  []string `toml:"tolerant"`
	Exact     []string `toml:"exact"`
	Directive []string `toml:"directive"`
	Part      []string `toml:"part"`
}

type renderSection struct {
	Trim bool `toml:"trim"`
	NFC  bool `toml:"nfc"`
}

type cacheSection struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type filesSection struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Default returns the configuration used when no markspan.toml exists.
func Default() Config {
	return Config{
		Markers: marker.DefaultNames(),
		Render:  render.DefaultOptions(),
		Cache:   Cache{Enabled: true},
		Files: Files{
			Include: []string{"*.go"},
			Exclude: []string{"*_test.go"},
		},
	}
}

func (c Config) section() fileConfig {
	return fileConfig{
		Markers: markersSection{
			Qualifier: c.Markers.Qualifier,
			Tolerant:  c.Markers.Tolerant,
			Exact:     c.Markers.Exact,
			Directive: c.Markers.Directive,
			Part:      c.Markers.Part,
		},
		Render: renderSection{Trim: c.Render.Trim, NFC: c.Render.NFC},
		Cache:  cacheSection{Enabled: c.Cache.Enabled, Dir: c.Cache.Dir},
		Files:  filesSection{Include: c.Files.Include, Exclude: c.Files.Exclude},
	}
}

// Find walks up from startDir looking for markspan.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest markspan.toml above startDir, or the defaults
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	fc := Default().section()
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("markers", "qualifier") && strings.TrimSpace(fc.Markers.Qualifier) == "" {
		return Config{}, fmt.Errorf("%s: [markers].qualifier is empty", path)
	}

	cfg := Config{
		Path: path,
		Root: filepath.Dir(path),
		Markers: marker.Names{
			Qualifier: fc.Markers.Qualifier,
			Tolerant:  fc.Markers.Tolerant,
			Exact:     fc.Markers.Exact,
			Directive: fc.Markers.Directive,
			Part:      fc.Markers.Part,
		},
		Render: render.Options{Trim: fc.Render.Trim, NFC: fc.Render.NFC},
		Cache:  Cache{Enabled: fc.Cache.Enabled, Dir: fc.Cache.Dir},
		Files:  Files{Include: fc.Files.Include, Exclude: fc.Files.Exclude},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(cfg.Root, cfg.Cache.Dir)
	}
	return cfg, nil
}

// Validate checks marker names and file patterns.
func (c Config) Validate() error {
	if err := c.Markers.Validate(); err != nil {
		return fmt.Errorf("[markers]: %w", err)
	}
	if len(c.Files.Include) == 0 {
		return errors.New("[files].include is empty")
	}
	for _, p := range slices.Concat(c.Files.Include, c.Files.Exclude) {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("[files]: bad pattern %q: %w", p, err)
		}
	}
	return nil
}

// Selects reports whether a file with the given base name is a marker file.
func (f Files) Selects(name string) bool {
	match := func(patterns []string) bool {
		for _, p := range patterns {
			if ok, _ := filepath.Match(p, name); ok { //nolint:errcheck // validated
				return true
			}
		}
		return false
	}
	return match(f.Include) && !match(f.Exclude)
}

// Fingerprint identifies every setting that changes pass output. Cached
// results are only reused under an equal fingerprint.
func (c Config) Fingerprint() string {
	var sb strings.Builder
	list := func(key string, vals []string) {
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(vals, ","))
		sb.WriteByte(';')
	}
	sb.WriteString("q=" + c.Markers.Qualifier + ";")
	list("t", c.Markers.Tolerant)
	list("x", c.Markers.Exact)
	list("d", c.Markers.Directive)
	list("p", c.Markers.Part)
	sb.WriteString("trim=" + strconv.FormatBool(c.Render.Trim) + ";")
	sb.WriteString("nfc=" + strconv.FormatBool(c.Render.NFC))
	return sb.String()
}
