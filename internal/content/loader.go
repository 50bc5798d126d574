package content

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/coursesite/internal/config"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/frontmatter"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

const courseMetaFile = "course.yaml"

// Warning is a non-fatal problem found while loading.
type Warning struct {
	File   string
	Reason string
}

// Loader builds a Tree from a filesystem.
type Loader struct {
	FS            fs.FS
	CoursesDir    string
	Extension     string
	Locales       *locale.Router
	IncludeDrafts bool
	Logger        *slog.Logger
}

// NewLoader returns a loader reading cfg.Content.Dir from disk.
func NewLoader(cfg *config.Config, router *locale.Router, logger *slog.Logger) *Loader {
	return &Loader{
		FS:         os.DirFS(cfg.Content.Dir),
		CoursesDir: cfg.Content.CoursesDir,
		Extension:  cfg.Content.Extension,
		Locales:    router,
		Logger:     logger,
	}
}

// Load walks the courses directory and returns an immutable tree.
func (l *Loader) Load(ctx context.Context) (*Tree, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	root := l.CoursesDir
	if root == "" {
		root = "courses"
	}
	ext := l.Extension
	if ext == "" {
		ext = ".mdx"
	}

	t := newTree(l.Locales)
	if _, err := fs.Stat(l.FS, root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.ContentError("courses directory not found").WithContext("dir", root).Build()
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "stat courses directory").WithContext("dir", root).Build()
	}

	err := fs.WalkDir(l.FS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, root+"/")
		parts := strings.Split(rel, "/")
		switch {
		case len(parts) == 2 && name == courseMetaFile:
			return l.loadCourseMeta(t, parts[0], p)
		case path.Ext(name) != ext:
			return nil // assets
		case len(parts) < 2 || len(parts) > 3:
			t.warn(p, "document outside <course>/<lesson>/<locale>"+ext)
			return nil
		}

		loc := strings.TrimSuffix(name, ext)
		if !l.Locales.IsSupported(loc) {
			t.warn(p, "unsupported locale "+loc)
			return nil
		}
		loc = l.Locales.Canonical(loc)

		lesson := ""
		if len(parts) == 3 {
			lesson = parts[1]
		}
		doc, err := l.loadDocument(p, parts[0], lesson, loc)
		if err != nil {
			return err
		}
		if doc.Draft && !l.IncludeDrafts {
			logger.Debug("Skipping draft", logfields.Path(p))
			return nil
		}
		t.add(doc)
		return nil
	})
	if err != nil {
		if derrors.IsClassified(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "walk content").WithContext("dir", root).Build()
	}

	t.finish()
	for _, w := range t.warnings {
		logger.Warn("Skipped content file", logfields.Path(w.File), slog.String("reason", w.Reason))
	}
	return t, nil
}

func (l *Loader) loadCourseMeta(t *Tree, course, p string) error {
	data, err := fs.ReadFile(l.FS, p)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "read course metadata").WithContext("file", p).Build()
	}
	meta, err := parseCourseMeta(data)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryContent, "invalid course.yaml").WithContext("file", p).Build()
	}
	t.course(course).Meta = meta
	return nil
}

func (l *Loader) loadDocument(p, course, lesson, loc string) (*Document, error) {
	data, err := fs.ReadFile(l.FS, p)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read document").WithContext("file", p).Build()
	}
	return ParseDocument(p, course, lesson, loc, data)
}

// ParseDocument builds a Document from raw file bytes.
func ParseDocument(sourcePath, course, lesson, loc string, data []byte) (*Document, error) {
	parsed, err := frontmatter.Parse(data)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryContent, "invalid frontmatter").WithContext("file", sourcePath).Build()
	}
	meta, err := frontmatter.DecodeMeta(parsed.Fields)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryContent, "invalid frontmatter field").WithContext("file", sourcePath).Build()
	}
	fp, err := frontmatter.Fingerprint(parsed.Fields, parsed.Body)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryContent, "fingerprint document").WithContext("file", sourcePath).Build()
	}

	route := RoutePath(course, lesson)
	doc := &Document{
		Course:      course,
		Lesson:      lesson,
		Locale:      loc,
		Path:        route,
		SourcePath:  sourcePath,
		Frontmatter: parsed.Fields,
		Body:        parsed.Body,
		BodyLine:    parsed.BodyLine,
		Title:       meta.Title,
		Description: meta.Description,
		Order:       meta.Order,
		Draft:       meta.Draft,
		Tags:        meta.Tags,
		Fingerprint: fp,
		UID:         meta.UID,
	}
	if doc.Title == "" {
		doc.Title = firstHeading(parsed.Body)
	}
	if doc.Title == "" {
		slug := lesson
		if slug == "" {
			slug = course
		}
		doc.Title = Humanize(slug)
	}
	if doc.UID == "" {
		doc.UID = DeriveUID(route, loc)
	}
	return doc, nil
}
