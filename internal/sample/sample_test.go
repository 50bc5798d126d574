package sample

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteToKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	n, err := WriteTo(dir, false)
	require.NoError(t, err)
	assert.Positive(t, n)

	target := filepath.Join(dir, "courses", "anchor", "intro", "en.mdx")
	require.NoError(t, os.WriteFile(target, []byte("edited"), 0o600))

	n, err = WriteTo(dir, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data))

	_, err = WriteTo(dir, true)
	require.NoError(t, err)
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.NotEqual(t, "edited", string(data))
}

func TestMessagesCoverEveryNonDefaultLocale(t *testing.T) {
	var keys map[string]string
	for _, loc := range Locales[1:] {
		data, err := fs.ReadFile(MessagesFS(), loc+".yaml")
		require.NoError(t, err, loc)
		var msgs map[string]string
		require.NoError(t, yaml.Unmarshal(data, &msgs), loc)
		if keys == nil {
			keys = msgs
			continue
		}
		assert.Len(t, msgs, len(keys), loc)
	}
	assert.NotEmpty(t, keys["site.courses"])
}
