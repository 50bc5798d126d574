// Package components implements the presentational components available to
// MDX documents.
package components

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/coursesite/internal/mdx"
)

// Registry maps component names to implementations.
type Registry struct {
	byName map[string]mdx.Component
}

// NewRegistry returns a registry holding cs.
func NewRegistry(cs ...mdx.Component) (*Registry, error) {
	r := &Registry{byName: make(map[string]mdx.Component, len(cs))}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a registry with every built-in component.
func Default() *Registry {
	r, err := NewRegistry(NewArticleSection(), NewCodeblock(), NewAnchorDiscriminatorCalculator())
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds c. Names must be unique and capitalized.
func (r *Registry) Register(c mdx.Component) error {
	name := c.Name()
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return fmt.Errorf("component name %q must start with an upper-case letter", name)
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %q already registered", name)
	}
	r.byName[name] = c
	return nil
}

// Lookup implements mdx.Registry.
func (r *Registry) Lookup(name string) (mdx.Component, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Slugify produces heading IDs compatible with the markdown renderer's
// auto IDs: lower case, with runs of spaces, dashes and underscores collapsed to "-".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '\t':
			dash = true
		}
	}
	return b.String()
}
