package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestStylesheetDeterministic(t *testing.T) {
	a := Stylesheet(Defaults())
	b := Stylesheet(Defaults())
	assert.Equal(t, a, b)
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 12)
}

func TestStylesheetContents(t *testing.T) {
	tok := Defaults()
	tok.Dark = map[string]string{"background": "#000"}
	css := string(Stylesheet(tok))

	assert.True(t, strings.HasPrefix(css, ":root{--color-accent:#14f195;"), css[:60])
	assert.Contains(t, css, "--font-mono:")
	assert.Contains(t, css, "--breakpoint-md:768px;")
	assert.Contains(t, css, ".text-brand{color:var(--color-brand)}")
	assert.Contains(t, css, ".bg-code-bg{background-color:var(--color-code-bg)}")
	assert.Contains(t, css, "[data-theme=dark]{--color-background:#000;}")
	assert.Contains(t, css, "@keyframes fade-in")

	sm := strings.Index(css, "@media (min-width:640px)")
	xl2 := strings.Index(css, "@media (min-width:1536px)")
	require.True(t, sm > 0 && xl2 > 0)
	assert.Less(t, sm, xl2, "breakpoints must be ascending")
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Tokens){
		"bad color":         func(t *Tokens) { t.Colors["brand"] = "purple-ish" },
		"css injection":     func(t *Tokens) { t.Fonts["sans"] = "x;}body{display:none" },
		"bad name":          func(t *Tokens) { t.Colors["Brand Color"] = "#fff" },
		"bad breakpoint":    func(t *Tokens) { t.Breakpoints["md"] = "wide" },
		"zero breakpoint":   func(t *Tokens) { t.Breakpoints["md"] = "0px" },
		"orphan dark color": func(t *Tokens) { t.Dark["nope"] = "#fff" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tok := Defaults()
			mutate(&tok)
			err := tok.Validate()
			require.Error(t, err)
			assert.True(t, derrors.HasCategory(err, derrors.CategoryTheme))
		})
	}
}

func TestIsColor(t *testing.T) {
	for _, ok := range []string{"#fff", "#ffffff", "#ffffff80", "rgb(1, 2, 3)", "hsl(200 50% 50%)", "oklch(0.7 0.1 200)", "var(--color-brand)"} {
		assert.True(t, IsColor(ok), ok)
	}
	for _, bad := range []string{"#ff", "red", "rgb(1,2", "url(x)"} {
		assert.False(t, IsColor(bad), bad)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colors:\n  brand: \"#123456\"\nbreakpoints:\n  3xl: 1920px\n"), 0o600))

	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#123456", th.Tokens.Colors["brand"])
	assert.Equal(t, "#14f195", th.Tokens.Colors["accent"])
	assert.Contains(t, string(th.CSS), "--breakpoint-3xl:1920px;")
	assert.Equal(t, "/theme."+th.Hash+".css", th.Path())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryTheme))
}

func TestCompileExtraChangesHash(t *testing.T) {
	plain, err := Compile(Defaults())
	require.NoError(t, err)
	withExtra, err := Compile(Defaults(), []byte(".chroma{color:#fff}"))
	require.NoError(t, err)

	assert.NotEqual(t, plain.Hash, withExtra.Hash)
	assert.True(t, strings.HasSuffix(string(withExtra.CSS), ".chroma{color:#fff}"))
	assert.True(t, strings.HasPrefix(string(withExtra.CSS), string(plain.CSS)))
}
