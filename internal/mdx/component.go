package mdx

import (
	"context"
	"html/template"
)

// RenderContext carries per-page data into component renders.
type RenderContext struct {
	Locale string
	Route  string
	// T translates a UI message key for Locale. May be nil.
	T func(key string, args ...any) string
}

// Translate calls T when set and returns key otherwise.
func (rc RenderContext) Translate(key string, args ...any) string {
	if rc.T == nil {
		return key
	}
	return rc.T(key, args...)
}

// Invocation is a single component call.
type Invocation struct {
	Props    Props
	Children string
	// RenderChildren renders Children as MDX with the page's imports in scope.
	RenderChildren func(ctx context.Context) (template.HTML, error)
	Context        RenderContext
	Line           int
}

// Component renders a named element.
type Component interface {
	Name() string
	// Required lists props that must be present.
	Required() []string
	// RawChildren reports whether children are opaque text (e.g. code) that
	// must not be parsed as MDX.
	RawChildren() bool
	Render(ctx context.Context, in Invocation) (template.HTML, error)
}

// Registry resolves component names.
type Registry interface {
	Lookup(name string) (Component, bool)
}
