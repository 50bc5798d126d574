package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// SetupTestGitRepo initializes a temporary git repository for testing.
// Returns the repository, its worktree, and the absolute path to the temporary directory.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()

	tempDir := t.TempDir()
	repo, err := git.PlainInitWithOptions(tempDir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err, "init git repo")

	w, err := repo.Worktree()
	require.NoError(t, err, "get worktree")
	return repo, w, tempDir
}

// CommitFile writes content to rel inside the worktree rooted at dir and
// commits it, returning the commit hash.
func CommitFile(t *testing.T, w *git.Worktree, dir, rel, content string) plumbing.Hash {
	t.Helper()

	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	_, err := w.Add(rel)
	require.NoError(t, err)

	hash, err := w.Commit("update "+rel, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}
