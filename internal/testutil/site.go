// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursesite/internal/cache"
	"git.home.luguber.info/inful/coursesite/internal/components"
	"git.home.luguber.info/inful/coursesite/internal/config"
	"git.home.luguber.info/inful/coursesite/internal/content"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/sample"
	"git.home.luguber.info/inful/coursesite/internal/site"
	"git.home.luguber.info/inful/coursesite/internal/theme"
)

// SampleSite builds a site over the embedded sample tree with an in-memory
// cache. Options can be adjusted before the site is constructed.
func SampleSite(t *testing.T, mutate ...func(*site.Options)) *site.Site {
	t.Helper()
	router := locale.NewRouter("en", sample.Locales)
	tree, err := (&content.Loader{FS: sample.FS(), Locales: router}).Load(context.Background())
	require.NoError(t, err)
	th, err := theme.Compile(theme.Defaults(), components.HighlightCSS())
	require.NoError(t, err)

	catalog := locale.NewCatalog("en")
	catalog.Add("es", locale.Messages{
		"site.courses":   "Cursos",
		"site.not_found": "Página no encontrada",
	})

	opts := site.Options{
		Site:     config.SiteConfig{Title: "Solana Courses", BaseURL: "https://learn.example.com"},
		Router:   router,
		Store:    content.NewStore(tree),
		Registry: components.Default(),
		Theme:    th,
		Catalog:  catalog,
		Cache:    cache.NewMemory(256),
	}
	for _, m := range mutate {
		m(&opts)
	}
	s, err := site.New(opts)
	require.NoError(t, err)
	return s
}
