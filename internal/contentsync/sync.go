// Package contentsync mirrors the course content tree from a git remote.
package contentsync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/coursesite/internal/config"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

// Result describes one sync.
type Result struct {
	Revision string
	Changed  bool
	Cloned   bool
}

// Syncer keeps Dir at the tip of Branch on the remote.
type Syncer struct {
	URL    string
	Branch string
	Dir    string
	Auth   transport.AuthMethod
	Logger *slog.Logger
}

// New returns a syncer for cfg writing into dir. The token, if any, is read
// from the environment variable named by cfg.TokenEnv.
func New(cfg config.SyncConfig, dir string, logger *slog.Logger) (*Syncer, error) {
	if cfg.URL == "" {
		return nil, derrors.ConfigError("sync url is required").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Syncer{URL: cfg.URL, Branch: cfg.Branch, Dir: dir, Logger: logger}
	if s.Branch == "" {
		s.Branch = config.DefaultSyncBranch
	}
	if cfg.TokenEnv != "" {
		token := os.Getenv(cfg.TokenEnv)
		if token == "" {
			return nil, derrors.ConfigError("sync token variable is empty").WithContext("env", cfg.TokenEnv).Build()
		}
		s.Auth = &http.BasicAuth{Username: "git", Password: token}
	}
	return s, nil
}

// Sync clones the remote on first use and fast-forwards afterwards. Local
// history that diverged from the remote is reported, never overwritten.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	if _, err := os.Stat(filepath.Join(s.Dir, ".git")); err == nil {
		return s.update(ctx)
	}
	return s.clone(ctx)
}

func (s *Syncer) clone(ctx context.Context) (Result, error) {
	entries, err := os.ReadDir(s.Dir)
	if err == nil && len(entries) > 0 {
		return Result{}, derrors.ConfigError("content dir exists and is not a git checkout").
			WithContext("dir", s.Dir).Build()
	}

	s.Logger.Info("Cloning content", logfields.Path(s.Dir), slog.String("branch", s.Branch))
	repo, err := git.PlainCloneContext(ctx, s.Dir, false, &git.CloneOptions{
		URL:           s.URL,
		Auth:          s.Auth,
		ReferenceName: plumbing.NewBranchReferenceName(s.Branch),
		SingleBranch:  true,
		Tags:          git.NoTags,
	})
	if err != nil {
		_ = os.RemoveAll(s.Dir)
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "clone content").
			WithContext("branch", s.Branch).Retryable().Build()
	}
	head, err := repo.Head()
	if err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "read HEAD").Build()
	}
	rev := head.Hash().String()
	s.Logger.Info("Content cloned", slog.String("commit", rev[:8]))
	return Result{Revision: rev, Changed: true, Cloned: true}, nil
}

func (s *Syncer) update(ctx context.Context) (Result, error) {
	repo, err := git.PlainOpen(s.Dir)
	if err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "open content repository").WithContext("dir", s.Dir).Build()
	}
	head, err := repo.Head()
	if err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "read HEAD").Build()
	}

	refSpec := ggitcfg.RefSpec("+refs/heads/" + s.Branch + ":refs/remotes/origin/" + s.Branch)
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []ggitcfg.RefSpec{refSpec},
		Auth:       s.Auth,
		Tags:       git.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "fetch content").
			WithContext("branch", s.Branch).Retryable().Build()
	}

	remote, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", s.Branch), true)
	if err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "remote branch missing").WithContext("branch", s.Branch).Build()
	}
	if remote.Hash() == head.Hash() {
		s.Logger.Debug("Content already up to date", slog.String("commit", head.Hash().String()[:8]))
		return Result{Revision: head.Hash().String()}, nil
	}

	ff, err := isAncestor(repo, head.Hash(), remote.Hash())
	if err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "ancestor check").Build()
	}
	if !ff {
		return Result{}, derrors.NewError(derrors.CategorySync, "local content diverged from remote").
			WithContext("local", head.Hash().String()[:8]).
			WithContext("remote", remote.Hash().String()[:8]).Build()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "worktree").Build()
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remote.Hash(), Mode: git.HardReset}); err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategorySync, "fast-forward content").Build()
	}
	s.Logger.Info("Fast-forwarded content",
		slog.String("from", head.Hash().String()[:8]),
		slog.String("to", remote.Hash().String()[:8]))
	return Result{Revision: remote.Hash().String(), Changed: true}, nil
}

// isAncestor walks b's history looking for a.
func isAncestor(repo *git.Repository, a, b plumbing.Hash) (bool, error) {
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}
