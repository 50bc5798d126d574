package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inful/mdfp"
)

// Meta is the typed view of the frontmatter fields a lesson may carry.
type Meta struct {
	Title       string
	Description string
	Order       int
	UID         string
	Draft       bool
	Tags        []string
	Updated     time.Time
}

// DecodeMeta reads the known keys out of fields. Unknown keys are ignored;
// a known key of the wrong type is an error.
func DecodeMeta(fields map[string]any) (Meta, error) {
	var m Meta
	var err error
	if m.Title, err = stringField(fields, "title"); err != nil {
		return m, err
	}
	if m.Description, err = stringField(fields, "description"); err != nil {
		return m, err
	}
	if m.UID, err = stringField(fields, "uid"); err != nil {
		return m, err
	}
	if v, ok := fields["order"]; ok {
		switch n := v.(type) {
		case int:
			m.Order = n
		case float64:
			m.Order = int(n)
		case string:
			if m.Order, err = strconv.Atoi(strings.TrimSpace(n)); err != nil {
				return m, fmt.Errorf("order: %w", err)
			}
		default:
			return m, fmt.Errorf("order: expected number, got %T", v)
		}
	}
	if v, ok := fields["draft"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return m, fmt.Errorf("draft: expected bool, got %T", v)
		}
		m.Draft = b
	}
	switch tags := fields["tags"].(type) {
	case nil:
	case string:
		m.Tags = []string{tags}
	case []any:
		for _, t := range tags {
			m.Tags = append(m.Tags, fmt.Sprint(t))
		}
	default:
		return m, fmt.Errorf("tags: expected list, got %T", tags)
	}
	switch u := fields["updated"].(type) {
	case nil:
	case time.Time:
		m.Updated = u
	case string:
		if m.Updated, err = time.Parse("2006-01-02", u); err != nil {
			return m, fmt.Errorf("updated: %w", err)
		}
	}
	return m, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	case int, float64, bool:
		return fmt.Sprint(s), nil
	}
	return "", fmt.Errorf("%s: expected string, got %T", key, v)
}

// volatile keys do not contribute to the fingerprint.
var volatile = map[string]bool{
	mdfp.FingerprintField: true,
	"uid":                 true,
	"updated":             true,
}

// Fingerprint hashes the stable frontmatter fields together with the body.
// Two documents with equal content produce equal fingerprints regardless of key order.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	stable := make(map[string]any, len(fields))
	for k, v := range fields {
		if !volatile[k] {
			stable[k] = v
		}
	}
	raw, err := Encode(stable)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(raw), "\n"), string(body)), nil
}
