// Package sample ships a small course tree used by `coursesite init` and tests.
package sample

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

//go:embed all:content messages
var embedded embed.FS

// Locales are the locales the sample tree contains.
var Locales = []string{"en", "es", "zh-CN"}

// FS returns the sample content rooted at the content directory, so
// "courses/anchor/intro/en.mdx" is a valid path.
func FS() fs.FS { return sub("content") }

// MessagesFS returns the sample UI message catalogs, one <locale>.yaml each.
func MessagesFS() fs.FS { return sub("messages") }

func sub(dir string) fs.FS {
	s, err := fs.Sub(embedded, dir)
	if err != nil {
		panic(err)
	}
	return s
}

// WriteTo copies the sample tree into dir. Existing files are kept unless force is set.
func WriteTo(dir string, force bool) (int, error) {
	return writeTree(FS(), dir, force)
}

// WriteMessagesTo copies the sample message catalogs into dir.
func WriteMessagesTo(dir string, force bool) (int, error) {
	return writeTree(MessagesFS(), dir, force)
}

func writeTree(fsys fs.FS, dir string, force bool) (written int, err error) {
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		target := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if _, statErr := os.Stat(target); statErr == nil && !force {
			return nil
		}
		data, readErr := fs.ReadFile(fsys, p)
		if readErr != nil {
			return readErr
		}
		if writeErr := os.WriteFile(target, data, 0o600); writeErr != nil {
			return writeErr
		}
		written++
		return nil
	})
	if err != nil {
		return written, derrors.WrapError(err, derrors.CategoryFileSystem, "write sample content").WithContext("dir", dir).Build()
	}
	return written, nil
}
