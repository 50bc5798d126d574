package linkcheck

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursesite/internal/content"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/site"
	"git.home.luguber.info/inful/coursesite/internal/testutil"
)

func TestExtract(t *testing.T) {
	base, _ := url.Parse("https://learn.example.com")
	doc := `<html><head><link rel="stylesheet" href="/theme.css"><script src="https://cdn.example.org/x.js"></script></head>
<body><h2 id="setup">Setup</h2><a href="/en/">home</a><a href="mailto:a@b.c">mail</a>
<img src="img/a.png"><a href="https://learn.example.com/en/courses/">abs</a></body></html>`

	p, err := Extract(strings.NewReader(doc), base)
	require.NoError(t, err)
	assert.True(t, p.IDs["setup"])

	internal := map[string]bool{}
	for _, l := range p.Links {
		internal[l.URL] = l.Internal
	}
	assert.Equal(t, map[string]bool{
		"/theme.css":                            true,
		"https://cdn.example.org/x.js":          false,
		"/en/":                                  true,
		"mailto:a@b.c":                          false,
		"img/a.png":                             true,
		"https://learn.example.com/en/courses/": true,
	}, internal)
}

func TestCheckSampleSiteIsClean(t *testing.T) {
	s := testutil.SampleSite(t)
	report, err := Check(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, len(s.Routes()), report.Pages)
	assert.Positive(t, report.Links)
	assert.Empty(t, report.Broken)
	assert.True(t, report.OK())
}

func TestCheckFindsBrokenLinks(t *testing.T) {
	fsys := fstest.MapFS{
		"courses/c/a/en.mdx": {Data: []byte("---\ntitle: A\n---\n# A\n\n" +
			"[ok](/en/courses/c/b) [gone](/en/courses/c/zzz) [self](#nope) [there](/en/courses/c/b#missing) " +
			"[fine](/en/courses/c/b#b) [ext](https://example.com/x) [rel](b)\n")},
		"courses/c/b/en.mdx": {Data: []byte("---\ntitle: B\n---\n# B\n")},
	}
	router := locale.NewRouter("en", []string{"en"})
	tree, err := (&content.Loader{FS: fsys, Locales: router}).Load(context.Background())
	require.NoError(t, err)

	s := testutil.SampleSite(t, func(o *site.Options) {
		o.Router = router
		o.Store = content.NewStore(tree)
	})
	report, err := Check(context.Background(), s, nil)
	require.NoError(t, err)

	got := map[string]string{}
	for _, b := range report.Broken {
		assert.Equal(t, "/en/courses/c/a", b.Page)
		got[b.Link] = b.Reason
	}
	assert.Equal(t, map[string]string{
		"/en/courses/c/zzz":       ReasonNoPage,
		"#nope":                   ReasonNoFragment,
		"/en/courses/c/b#missing": ReasonNoFragment,
	}, got)
	assert.False(t, report.OK())
}
