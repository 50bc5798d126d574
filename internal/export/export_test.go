package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/search"
	"git.home.luguber.info/inful/coursesite/internal/testutil"
)

func TestExportWritesSite(t *testing.T) {
	s := testutil.SampleSite(t)
	out := filepath.Join(t.TempDir(), "out")
	res, err := (&Exporter{Site: s, OutDir: out, Concurrency: 2}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(s.Routes()), res.Pages)
	assert.Equal(t, out, res.Dir)

	fa := testutil.NewFileAssertions(t, out)
	fa.AssertFileContains("index.html", `<html lang="en">`).
		AssertFileContains("en/index.html", `<html lang="en">`).
		AssertFileContains("en/courses/anchor/intro/index.html", "Introduction to Anchor").
		AssertFileContains("es/courses/anchor/accounts/index.html", "Accounts and Constraints").
		AssertFileContains("zh-CN/courses/pinocchio/intro/index.html", `<html lang="zh-CN">`).
		AssertFileContains("es/404.html", "Página no encontrada").
		AssertFileExists("404.html").
		AssertFileExists("theme.css").
		AssertFileExists(strings.TrimPrefix(s.Theme().Path(), "/")).
		AssertFileNotExists("en/courses/anchor/intro.html")
	assert.Equal(t, res.Files, fa.CountFiles("."))

	data, err := os.ReadFile(filepath.Join(out, "en", "search.json"))
	require.NoError(t, err)
	var entries []search.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, "en", e.Locale)
		assert.True(t, strings.HasPrefix(e.Route, "/en/courses/"), e.Route)
	}
}

func TestExportReplacesPreviousOutput(t *testing.T) {
	s := testutil.SampleSite(t)
	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(out, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.html"), []byte("old"), 0o600))

	_, err := (&Exporter{Site: s, OutDir: out}).Run(context.Background())
	require.NoError(t, err)

	testutil.NewFileAssertions(t, out).
		AssertFileNotExists("stale.html").
		AssertFileExists("en/index.html")
	_, err = os.Stat(out + ".prev")
	assert.True(t, os.IsNotExist(err), "backup is removed")
	_, err = os.Stat(out + "_stage")
	assert.True(t, os.IsNotExist(err), "staging is promoted")
}

func TestExportFailureLeavesNoStaging(t *testing.T) {
	s := testutil.SampleSite(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := (&Exporter{Site: s, OutDir: filepath.Join(blocker, "out")}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryFileSystem))
}

func TestPageFile(t *testing.T) {
	assert.Equal(t, "en/index.html", pageFile("/en/"))
	assert.Equal(t, "en/courses/a/index.html", pageFile("/en/courses/a/"))
	assert.Equal(t, "en/courses/a/b/index.html", pageFile("/en/courses/a/b"))
}
