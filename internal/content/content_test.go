package content

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/sample"
)

func sampleTree(t *testing.T) *Tree {
	t.Helper()
	l := &Loader{FS: sample.FS(), Locales: locale.NewRouter("en", sample.Locales)}
	tree, err := l.Load(context.Background())
	require.NoError(t, err)
	return tree
}

func TestLoadSample(t *testing.T) {
	tree := sampleTree(t)

	courses := tree.Courses("en")
	require.Len(t, courses, 2)
	assert.Equal(t, "anchor", courses[0].Slug)
	assert.Equal(t, "pinocchio", courses[1].Slug)
	assert.Equal(t, []string{"intro", "accounts", "discriminators"}, courses[0].LessonSlugs())

	assert.Equal(t, "Fundamentos de Anchor", courses[0].Title("es", "en"))
	assert.Equal(t, "Pinocchio Programs", courses[1].Title("es", "en"))

	s := tree.Stats()
	assert.Equal(t, 2, s.Courses)
	assert.Equal(t, 4, s.Lessons)
	assert.Equal(t, 8, s.Documents)
	assert.Equal(t, 5, s.PerLocale["en"])
	assert.Equal(t, 2, s.PerLocale["es"])
	assert.Equal(t, 1, s.PerLocale["zh-CN"])
	assert.Empty(t, tree.Warnings())
}

func TestLookupFallback(t *testing.T) {
	tree := sampleTree(t)

	r, err := tree.Lookup("anchor", "intro", "es")
	require.NoError(t, err)
	assert.False(t, r.FallbackUsed)
	assert.Equal(t, "es", r.Doc.Locale)
	assert.Equal(t, "Introducción a Anchor", r.Doc.Title)
	assert.Equal(t, []string{"en", "es"}, r.AvailableLocales)

	r, err = tree.Lookup("anchor", "accounts", "es")
	require.NoError(t, err)
	assert.True(t, r.FallbackUsed)
	assert.Equal(t, "en", r.Doc.Locale)
	assert.Equal(t, "es", r.Requested)

	r, err = tree.Lookup("anchor", "", "en")
	require.NoError(t, err)
	assert.True(t, r.Doc.IsOverview())
	assert.Equal(t, "/courses/anchor/", r.Doc.Path)
}

func TestLookupNotFound(t *testing.T) {
	tree := sampleTree(t)
	for _, tc := range []struct{ course, lesson string }{
		{"missing", "intro"},
		{"anchor", "missing"},
		{"pinocchio", ""}, // no overview
	} {
		_, err := tree.Lookup(tc.course, tc.lesson, "en")
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound), "%s/%s", tc.course, tc.lesson)
	}
}

func TestNeighbors(t *testing.T) {
	tree := sampleTree(t)

	prev, next := tree.Neighbors("anchor", "accounts", "en")
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "intro", prev.Doc.Lesson)
	assert.Equal(t, "discriminators", next.Doc.Lesson)

	prev, next = tree.Neighbors("anchor", "intro", "en")
	assert.Nil(t, prev)
	require.NotNil(t, next)

	prev, next = tree.Neighbors("pinocchio", "intro", "zh-CN")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestDocumentFields(t *testing.T) {
	tree := sampleTree(t)
	r, err := tree.Lookup("anchor", "intro", "en")
	require.NoError(t, err)
	d := r.Doc

	assert.Equal(t, "courses/anchor/intro/en.mdx", d.SourcePath)
	assert.Equal(t, "/courses/anchor/intro", d.Path)
	assert.Equal(t, "What Anchor adds on top of a raw Solana program.", d.Description)
	assert.Equal(t, []string{"anchor"}, d.Tags)
	assert.Equal(t, 7, d.BodyLine)
	assert.NotEmpty(t, d.Fingerprint)
	assert.Equal(t, DeriveUID("/courses/anchor/intro", "en"), d.UID)
	assert.NotEqual(t, DeriveUID("/courses/anchor/intro", "es"), d.UID)
}

func TestLoadEdgeCases(t *testing.T) {
	fsys := fstest.MapFS{
		"courses/c/l/en.mdx":        {Data: []byte("# Heading Title\n")},
		"courses/c/l/de.mdx":        {Data: []byte("# unsupported\n")},
		"courses/c/l/diagram.png":   {Data: []byte{0x89}},
		"courses/c/l/x/y/en.mdx":    {Data: []byte("too deep")},
		"courses/c/draft/en.mdx":    {Data: []byte("---\ndraft: true\n---\nwip\n")},
		"courses/c/.git/en.mdx":     {Data: []byte("hidden")},
		"courses/c/no-title/EN.mdx": {Data: []byte("---\nuid: fixed\n---\ntext\n")},
		"courses/solo/course.yaml":  {Data: []byte("title: Only metadata\n")},
	}
	l := &Loader{FS: fsys, Locales: locale.NewRouter("en", []string{"en", "es"})}
	tree, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, tree.Warnings(), 2)
	_, ok := tree.Course("solo")
	assert.False(t, ok)

	r, err := tree.Lookup("c", "l", "en")
	require.NoError(t, err)
	assert.Equal(t, "Heading Title", r.Doc.Title)

	_, err = tree.Lookup("c", "draft", "en")
	assert.Error(t, err)

	r, err = tree.Lookup("c", "no-title", "en")
	require.NoError(t, err)
	assert.Equal(t, "No Title", r.Doc.Title)
	assert.Equal(t, "fixed", r.Doc.UID)

	l.IncludeDrafts = true
	tree, err = l.Load(context.Background())
	require.NoError(t, err)
	_, err = tree.Lookup("c", "draft", "en")
	assert.NoError(t, err)
}

func TestLoadErrors(t *testing.T) {
	router := locale.NewRouter("en", nil)

	_, err := (&Loader{FS: fstest.MapFS{}, Locales: router}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryContent))

	bad := fstest.MapFS{"courses/c/l/en.mdx": {Data: []byte("---\ntitle: [x\n---\n")}}
	_, err = (&Loader{FS: bad, Locales: router}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryContent))
	ce, ok := derrors.AsClassified(err)
	require.True(t, ok)
	file, _ := ce.Context().GetString("file")
	assert.Equal(t, "courses/c/l/en.mdx", file)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Loader{FS: sample.FS(), Locales: router}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreSwap(t *testing.T) {
	s := NewStore(nil)
	assert.Nil(t, s.Current())

	a := sampleTree(t)
	b := sampleTree(t)
	assert.Equal(t, uint64(1), s.Swap(a))
	assert.Equal(t, uint64(2), s.Swap(b))
	assert.Same(t, b, s.Current())
	assert.Equal(t, uint64(2), s.Current().Generation())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.NotNil(t, s.Current())
			}
		}()
	}
	wg.Wait()
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Pda Basics", Humanize("pda-basics"))
	assert.Equal(t, "Intro", Humanize("intro"))
	assert.Equal(t, "A B", Humanize("a__b"))
}
