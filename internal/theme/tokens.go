// Package theme holds the design tokens and renders them as a CSS stylesheet
// of custom properties, utility classes and animations.
package theme

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// Tokens are the named design constants consumed by the styling layer.
type Tokens struct {
	Colors      map[string]string `yaml:"colors"`
	Dark        map[string]string `yaml:"dark"` // color overrides for the dark scheme
	Fonts       map[string]string `yaml:"fonts"`
	Breakpoints map[string]string `yaml:"breakpoints"`
	Radii       map[string]string `yaml:"radii"`
	Spacing     map[string]string `yaml:"spacing"`
}

// Defaults returns the built-in token set.
func Defaults() Tokens {
	return Tokens{
		Colors: map[string]string{
			"background": "#0b0d12",
			"foreground": "#e6e8ee",
			"brand":      "#9945ff",
			"accent":     "#14f195",
			"muted":      "#8a8f98",
			"border":     "#232733",
			"code-bg":    "#11141b",
			"warning":    "#ffb020",
			"error":      "#ff4d4f",
		},
		Dark: map[string]string{},
		Fonts: map[string]string{
			"sans": `"Inter", ui-sans-serif, system-ui, sans-serif`,
			"mono": `"JetBrains Mono", ui-monospace, SFMono-Regular, monospace`,
		},
		Breakpoints: map[string]string{
			"sm":  "640px",
			"md":  "768px",
			"lg":  "1024px",
			"xl":  "1280px",
			"2xl": "1536px",
		},
		Radii: map[string]string{
			"sm": "4px",
			"md": "8px",
			"lg": "12px",
		},
		Spacing: map[string]string{
			"1": "0.25rem",
			"2": "0.5rem",
			"4": "1rem",
			"8": "2rem",
		},
	}
}

// LoadTokens reads a YAML token file and merges it over Defaults.
// An empty path returns the defaults.
func LoadTokens(path string) (Tokens, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, derrors.NewError(derrors.CategoryTheme, "token file not found").WithContext("file", path).Build()
		}
		return t, derrors.WrapError(err, derrors.CategoryFileSystem, "read token file").WithContext("file", path).Build()
	}
	var override Tokens
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, derrors.WrapError(err, derrors.CategoryTheme, "parse token file").WithContext("file", path).Build()
	}
	t.Merge(override)
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Merge copies every token of other over t.
func (t *Tokens) Merge(other Tokens) {
	merge := func(dst *map[string]string, src map[string]string) {
		if *dst == nil {
			*dst = map[string]string{}
		}
		maps.Copy(*dst, src)
	}
	merge(&t.Colors, other.Colors)
	merge(&t.Dark, other.Dark)
	merge(&t.Fonts, other.Fonts)
	merge(&t.Breakpoints, other.Breakpoints)
	merge(&t.Radii, other.Radii)
	merge(&t.Spacing, other.Spacing)
}

var (
	namePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	hexColor      = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColor     = regexp.MustCompile(`^(rgb|rgba|hsl|hsla|oklch|oklab)\([^()]*\)$`)
	varRef        = regexp.MustCompile(`^var\(--[a-z0-9-]+\)$`)
	lengthPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]+(px|rem|em)$`)
)

// Validate rejects token names and values that would produce invalid CSS.
func (t Tokens) Validate() error {
	for group, m := range map[string]map[string]string{
		"colors": t.Colors, "dark": t.Dark, "fonts": t.Fonts,
		"breakpoints": t.Breakpoints, "radii": t.Radii, "spacing": t.Spacing,
	} {
		for name, value := range m {
			if !namePattern.MatchString(name) {
				return invalid(group, name, "token name must match [a-z0-9-]+")
			}
			if strings.TrimSpace(value) == "" || strings.ContainsAny(value, "{};") {
				return invalid(group, name, "token value is empty or contains CSS block characters")
			}
		}
	}
	for _, m := range []map[string]string{t.Colors, t.Dark} {
		for name, value := range m {
			if !IsColor(value) {
				return invalid("colors", name, "not a color: "+value)
			}
		}
	}
	for name, value := range t.Breakpoints {
		if !lengthPattern.MatchString(value) || strings.Trim(value, "0.pxrem") == "" {
			return invalid("breakpoints", name, "breakpoint must be a positive px/rem/em length")
		}
	}
	for name := range t.Dark {
		if _, ok := t.Colors[name]; !ok {
			return invalid("dark", name, "dark override has no base color")
		}
	}
	return nil
}

// IsColor reports whether v is a supported CSS color literal.
func IsColor(v string) bool {
	v = strings.TrimSpace(v)
	return hexColor.MatchString(v) || funcColor.MatchString(v) || varRef.MatchString(v)
}

func invalid(group, name, reason string) error {
	return derrors.NewError(derrors.CategoryTheme, reason).
		WithContext("group", group).
		WithContext("token", name).
		Build()
}
