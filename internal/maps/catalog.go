// internal/maps/catalog.go
//
// Map metadata catalog. Each map ships a small YAML descriptor in the maps
// directory:
//
//	name: Kobra
//	version: "1.2"
//	file: kobra.zip
//	modes: [DeathMatch, CaptureTheFlag]
//
// The coordinator only consumes the metadata (version string, supported
// modes, file path handed to spawned servers); it never opens the map file
// itself.
package maps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Info describes one playable map.
type Info struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	File    string   `yaml:"file"`
	Modes   []string `yaml:"modes"`
}

// SupportsMode reports whether the map declares the given game mode.
func (i Info) SupportsMode(mode string) bool {
	for _, m := range i.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Catalog resolves map names to their metadata. It is immutable after Load
// and safe for concurrent use.
type Catalog struct {
	dir   string
	infos map[string]Info
}

// Load reads every .yaml/.yml descriptor in dir. Descriptors without a name
// are rejected; duplicate names keep the first occurrence.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps dir %s: %w", dir, err)
	}

	infos := make(map[string]Info)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read map descriptor %s: %w", e.Name(), err)
		}
		var info Info
		if err := yaml.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("parse map descriptor %s: %w", e.Name(), err)
		}
		if info.Name == "" {
			return nil, fmt.Errorf("map descriptor %s: missing name", e.Name())
		}
		if _, exists := infos[info.Name]; !exists {
			infos[info.Name] = info
		}
	}

	return &Catalog{dir: dir, infos: infos}, nil
}

// Resolve returns the metadata for the named map.
func (c *Catalog) Resolve(name string) (Info, error) {
	info, ok := c.infos[name]
	if !ok {
		return Info{}, fmt.Errorf("unknown map %q", name)
	}
	return info, nil
}

// FilePath returns the absolute path of the map's payload file, resolving
// relative paths against the catalog directory.
func (c *Catalog) FilePath(info Info) string {
	if filepath.IsAbs(info.File) {
		return info.File
	}
	return filepath.Join(c.dir, info.File)
}

// Names lists every known map name, for diagnostics.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.infos))
	for name := range c.infos {
		out = append(out, name)
	}
	return out
}
