// Package search maintains a SQLite FTS5 index over lesson and overview text.
package search

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/coursesite/internal/content"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

// DefaultLimit caps Query results when the caller passes a non-positive limit.
const DefaultLimit = 20

// Hit is one search result.
type Hit struct {
	Route   string `json:"route"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Course  string `json:"course"`
	Lesson  string `json:"lesson,omitempty"`
}

// Entry is the plain-text form of one indexed document.
type Entry struct {
	Route  string `json:"route"`
	Locale string `json:"locale"`
	Course string `json:"course"`
	Lesson string `json:"lesson,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Index is a full-text index. It is safe for concurrent use; Rebuild
// replaces the whole index in one transaction.
type Index struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *slog.Logger
}

const schema = `
CREATE VIRTUAL TABLE IF NOT EXISTS lessons USING fts5(
	route UNINDEXED,
	locale UNINDEXED,
	course UNINDEXED,
	lesson UNINDEXED,
	title,
	body,
	tokenize = 'unicode61 remove_diacritics 2'
);
`

// Open opens (or creates) the index at dbPath. Use ":memory:" for a
// process-local index.
func Open(dbPath string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategorySearch, "open search index").
			WithContext("path", dbPath).Build()
	}
	// Every pooled connection to ":memory:" would get its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, derrors.WrapError(err, derrors.CategorySearch, "initialize search schema").
			WithContext("path", dbPath).Build()
	}
	return &Index{db: db, logger: logger}, nil
}

// Close releases the database.
func (x *Index) Close() error { return x.db.Close() }

// Rebuild replaces the index contents with docs.
func (x *Index) Rebuild(ctx context.Context, docs []*content.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return derrors.WrapError(err, derrors.CategorySearch, "begin index rebuild").Build()
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM lessons"); err != nil {
		return derrors.WrapError(err, derrors.CategorySearch, "clear index").Build()
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO lessons (route, locale, course, lesson, title, body) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return derrors.WrapError(err, derrors.CategorySearch, "prepare index insert").Build()
	}
	defer stmt.Close()

	for _, e := range Entries(docs) {
		if _, err := stmt.ExecContext(ctx, e.Route, e.Locale, e.Course, e.Lesson, e.Title, e.Body); err != nil {
			return derrors.WrapError(err, derrors.CategorySearch, "index document").
				WithContext("route", e.Route).Build()
		}
	}
	if err := tx.Commit(); err != nil {
		return derrors.WrapError(err, derrors.CategorySearch, "commit index rebuild").Build()
	}
	x.logger.Debug("Search index rebuilt", slog.Int("documents", len(docs)))
	return nil
}

// Query returns up to limit hits for q in locale, best match first.
// An empty query returns nil.
func (x *Index) Query(ctx context.Context, locale, q string, limit int) ([]Hit, error) {
	match := MatchExpression(q)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	rows, err := x.db.QueryContext(ctx, `
		SELECT route, title, course, lesson, snippet(lessons, 5, '<mark>', '</mark>', '…', 12)
		FROM lessons
		WHERE lessons MATCH ? AND locale = ?
		ORDER BY bm25(lessons, 0, 0, 0, 0, 10.0, 1.0)
		LIMIT ?`, match, locale, limit)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategorySearch, "query index").
			WithContext("query", q).Build()
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Route, &h.Title, &h.Course, &h.Lesson, &h.Snippet); err != nil {
			return nil, derrors.WrapError(err, derrors.CategorySearch, "scan search hit").Build()
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, derrors.WrapError(err, derrors.CategorySearch, "iterate search hits").Build()
	}
	x.logger.Debug("Search query", logfields.Locale(locale), slog.String("query", q), slog.Int("hits", len(hits)))
	return hits, nil
}

// MatchExpression turns free text into an FTS5 expression of quoted terms,
// so operators and column filters in user input match literally.
func MatchExpression(q string) string {
	terms := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	// Prefix-match the last term so results follow typing.
	quoted[len(quoted)-1] += "*"
	return strings.Join(quoted, " ")
}
