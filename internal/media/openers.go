package media

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

type Type int

const (
	// TypeLink is an ordinary article page, handed to the platform opener.
	TypeLink Type = iota
	TypeImage
	TypeVideo
)

func (t Type) String() string {
	switch t {
	case TypeImage:
		return "image"
	case TypeVideo:
		return "video"
	default:
		return "link"
	}
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

// TypeConfig describes how URLs of one media type are recognized and which
// viewers are tried, in order.
type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
	Viewers     []string `toml:"viewers"`
}

// OpenerDefinition is how one external program is invoked.
type OpenerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Args        []string `toml:"args"`
}

type Definitions struct {
	Platforms map[string]PlatformConfig   `toml:"platforms"`
	Image     TypeConfig                  `toml:"image"`
	Video     TypeConfig                  `toml:"video"`
	Openers   map[string]OpenerDefinition `toml:"openers"`
}

// LoadDefinitions parses the built-in definitions and merges the user's
// openers.toml over them when one exists.
func LoadDefinitions() (*Definitions, error) {
	defs, err := ParseDefinitions(openersTOML)
	if err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "newsdesk", "openers.toml")
		if data, err := os.ReadFile(path); err == nil {
			user, err := ParseDefinitions(data)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			defs.Merge(user)
		}
	}

	return defs, nil
}

func ParseDefinitions(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := toml.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	if defs.Platforms == nil {
		defs.Platforms = make(map[string]PlatformConfig)
	}
	if defs.Openers == nil {
		defs.Openers = make(map[string]OpenerDefinition)
	}
	return &defs, nil
}

// Merge overlays other onto d. Non-empty lists replace, map entries override.
func (d *Definitions) Merge(other *Definitions) {
	for name, p := range other.Platforms {
		d.Platforms[name] = p
	}
	for name, o := range other.Openers {
		d.Openers[name] = o
	}
	mergeType(&d.Image, other.Image)
	mergeType(&d.Video, other.Video)
}

func mergeType(dst *TypeConfig, src TypeConfig) {
	if len(src.Extensions) > 0 {
		dst.Extensions = src.Extensions
	}
	if len(src.URLPatterns) > 0 {
		dst.URLPatterns = src.URLPatterns
	}
	if len(src.Viewers) > 0 {
		dst.Viewers = src.Viewers
	}
}

// DefaultOpener returns the generic opener for goos.
func (d *Definitions) DefaultOpener(goos string) string {
	if p, ok := d.Platforms[goos]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	if p, ok := d.Platforms["fallback"]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	return "xdg-open"
}

// DetectType classifies rawURL by extension first, then by URL pattern.
func (d *Definitions) DetectType(rawURL string) Type {
	lower := strings.ToLower(rawURL)

	path := lower
	if i := strings.IndexAny(path, "?#"); i != -1 {
		path = path[:i]
	}
	var ext string
	if i := strings.LastIndex(path, "."); i != -1 && !strings.Contains(path[i:], "/") {
		ext = path[i+1:]
	}

	if ext != "" {
		if contains(d.Video.Extensions, ext) {
			return TypeVideo
		}
		if contains(d.Image.Extensions, ext) {
			return TypeImage
		}
	}
	if matchesAny(lower, d.Video.URLPatterns) {
		return TypeVideo
	}
	if matchesAny(lower, d.Image.URLPatterns) {
		return TypeImage
	}
	return TypeLink
}

// Args returns the arguments name needs before the URL on goos. Unknown
// programs get none; known programs that do not support goos are an error.
func (d *Definitions) Args(name, goos string) ([]string, error) {
	def, ok := d.Openers[name]
	if !ok {
		return nil, nil
	}
	if len(def.Platforms) > 0 && !contains(def.Platforms, goos) {
		return nil, fmt.Errorf("%s not supported on %s", name, goos)
	}
	return append([]string(nil), def.Args...), nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
