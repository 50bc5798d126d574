package locale

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// Messages is a flat key -> template map for one locale.
type Messages map[string]string

// builtin English UI strings. Catalog files override or extend them.
var builtin = Messages{
	"site.courses":         "Courses",
	"site.lessons":         "Lessons",
	"site.on_this_page":    "On this page",
	"site.previous":        "Previous",
	"site.next":            "Next",
	"site.language":        "Language",
	"site.search":          "Search",
	"site.not_found":       "Page not found",
	"site.not_found_body":  "The page you are looking for does not exist.",
	"site.back_home":       "Back to courses",
	"site.fallback_notice": "This lesson is not yet available in your language. Showing %s.",
	"site.lesson_count":    "%d lessons",
	"calc.title":           "Anchor discriminator calculator",
	"calc.kind":            "Kind",
	"calc.name":            "Name",
	"calc.compute":         "Compute",
	"calc.result":          "Discriminator",
}

// Catalog holds UI messages per locale with fallback to the default locale.
type Catalog struct {
	mu       sync.RWMutex
	def      string
	messages map[string]Messages
}

// NewCatalog returns a catalog seeded with the built-in English messages
// under the default locale.
func NewCatalog(def string) *Catalog {
	seed := make(Messages, len(builtin))
	for k, v := range builtin {
		seed[k] = v
	}
	return &Catalog{def: def, messages: map[string]Messages{def: seed}}
}

// LoadDir reads <dir>/<locale>.yaml for every locale. Missing files are skipped.
func (c *Catalog) LoadDir(dir string, locales []string) error {
	if dir == "" {
		return nil
	}
	for _, l := range locales {
		path := filepath.Join(dir, l+".yaml")
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "read message catalog").WithContext("file", path).Build()
		}
		var msgs Messages
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return derrors.WrapError(err, derrors.CategoryLocale, "parse message catalog").WithContext("file", path).Build()
		}
		c.Add(l, msgs)
	}
	return nil
}

// Add merges msgs into the catalog for locale.
func (c *Catalog) Add(locale string, msgs Messages) {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.messages[locale]
	if !ok {
		existing = make(Messages, len(msgs))
		c.messages[locale] = existing
	}
	for k, v := range msgs {
		existing[k] = v
	}
}

// T looks key up for locale, then the default locale, then returns the key.
// args are applied with fmt.Sprintf when present.
func (c *Catalog) T(locale, key string, args ...any) string {
	c.mu.RLock()
	msg, ok := c.messages[locale][key]
	if !ok {
		msg, ok = c.messages[c.def][key]
	}
	c.mu.RUnlock()
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
