package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/testutil"
)

func newGlobal() (*Global, *bytes.Buffer) {
	var out bytes.Buffer
	return &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Out: &out}, &out
}

// initProject writes a configuration and the sample content into a fresh
// working directory.
func initProject(t *testing.T) *CLI {
	t.Helper()
	t.Chdir(t.TempDir())
	root := &CLI{Config: defaultConfigFile}
	g, out := newGlobal()
	require.NoError(t, (&InitCmd{}).Run(g, root))
	assert.Contains(t, out.String(), "Created coursesite.yaml")
	return root
}

func TestInitCmd(t *testing.T) {
	root := initProject(t)
	fa := testutil.NewFileAssertions(t, ".")
	fa.AssertFileExists("coursesite.yaml")
	fa.AssertFileContains("coursesite.yaml", "zh-CN")
	fa.AssertFileExists("content/courses/anchor/intro/en.mdx")
	fa.AssertFileExists("messages/es.yaml")

	t.Run("refuses to overwrite", func(t *testing.T) {
		g, _ := newGlobal()
		err := (&InitCmd{}).Run(g, root)
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
	})

	t.Run("force keeps going", func(t *testing.T) {
		g, _ := newGlobal()
		require.NoError(t, (&InitCmd{Force: true, NoContent: true}).Run(g, root))
	})
}

func TestRoutesCmd(t *testing.T) {
	root := initProject(t)

	g, out := newGlobal()
	require.NoError(t, (&RoutesCmd{}).Run(g, root))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 22)
	assert.True(t, strings.HasPrefix(lines[0], "KIND"))
	assert.Contains(t, out.String(), "/es/courses/anchor/intro")

	g, out = newGlobal()
	require.NoError(t, (&RoutesCmd{Locale: "zh-cn"}).Run(g, root))
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n")[1:] {
		assert.Contains(t, line, "zh-CN")
	}

	g, _ = newGlobal()
	err := (&RoutesCmd{Locale: "fr"}).Run(g, root)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestDiscriminatorCmd(t *testing.T) {
	tests := []struct {
		name string
		cmd  DiscriminatorCmd
		want string
	}{
		{"account hex", DiscriminatorCmd{Kind: "account", Name: "Counter", Format: "hex"}, "ffb004f5bcfd7c19"},
		{"instruction hex", DiscriminatorCmd{Kind: "instruction", Name: "initialize", Format: "hex"}, "afaf6d1f0d989bed"},
		{"rust", DiscriminatorCmd{Kind: "account", Name: "Counter", Format: "rust"}, "[255, 176, 4, 245, 188, 253, 124, 25]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, out := newGlobal()
			require.NoError(t, tt.cmd.Run(g, &CLI{}))
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}

	g, _ := newGlobal()
	err := (&DiscriminatorCmd{Kind: "program", Name: "x"}).Run(g, &CLI{})
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestCheckCmd(t *testing.T) {
	root := initProject(t)

	g, out := newGlobal()
	require.NoError(t, (&CheckCmd{}).Run(g, root))
	assert.Contains(t, out.String(), "No problems found")

	bad := "---\ntitle: Broken\n---\n<Unknown />\n"
	require.NoError(t, os.MkdirAll(filepath.Join("content", "courses", "anchor", "broken"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join("content", "courses", "anchor", "broken", "en.mdx"), []byte(bad), 0o600))

	g, out = newGlobal()
	err := (&CheckCmd{NoLinks: true}).Run(g, root)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryContent))
	assert.Contains(t, out.String(), "courses/anchor/broken/en.mdx")
}

func TestBuildCmd(t *testing.T) {
	root := initProject(t)

	g, out := newGlobal()
	require.NoError(t, (&BuildCmd{Output: "public", Concurrency: 2}).Run(g, root))
	assert.Contains(t, out.String(), "Wrote")

	fa := testutil.NewFileAssertions(t, "public")
	fa.AssertFileExists("index.html")
	fa.AssertFileExists("404.html")
	fa.AssertFileExists("es/courses/anchor/intro/index.html")
	fa.AssertFileExists("en/search.json")
}

func TestPreviewCmd(t *testing.T) {
	root := initProject(t)

	g, out := newGlobal()
	require.NoError(t, (&PreviewCmd{Route: "/en/courses/anchor/intro", Style: "notty", Width: 80}).Run(g, root))
	assert.Contains(t, out.String(), "Introduction to Anchor")

	g, out = newGlobal()
	require.NoError(t, (&PreviewCmd{Route: "/zh-CN/courses/anchor/accounts", Style: "notty", Width: 80}).Run(g, root))
	assert.Contains(t, out.String(), "Showing en")

	g, _ = newGlobal()
	err := (&PreviewCmd{Route: "/en/", Style: "notty"}).Run(g, root)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))

	g, _ = newGlobal()
	err = (&PreviewCmd{Route: "/en/courses/anchor/nope", Style: "notty"}).Run(g, root)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig(&CLI{Config: defaultConfigFile})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)

	_, err = loadConfig(&CLI{Config: "missing.yaml"})
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
}

func TestAfterApplyLogLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv(logLevelEnv, "warn")
	require.NoError(t, (&CLI{Verbose: true}).AfterApply())
	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelWarn))

	t.Setenv(logLevelEnv, "loud")
	assert.Error(t, (&CLI{}).AfterApply())
}
