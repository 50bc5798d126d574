// Package frontmatter splits YAML frontmatter from MDX documents and decodes
// the fields the content tree understands.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrUnclosed is returned when a document opens a `---` block but never closes it.
var ErrUnclosed = errors.New("frontmatter opened with --- but not closed")

// Parsed is a document split into its frontmatter fields and body.
type Parsed struct {
	Fields  map[string]any
	Body    []byte
	Had     bool   // document carried a frontmatter block, possibly empty
	Newline string // "\n" or "\r\n"
	// BodyLine is the 1-based source line on which Body starts.
	BodyLine int
}

// Split separates the raw frontmatter block from the body.
// A document without a leading `---` line returns had=false and the whole input as body.
func Split(src []byte) (raw, body []byte, had bool, nl string, err error) {
	nl = newlineOf(src)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(src, open) {
		return nil, src, false, nl, nil
	}
	rest := src[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nl, nil
	}
	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// closing delimiter at EOF without trailing newline
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-len("---")], []byte{}, true, nl, nil
		}
		return nil, nil, false, nl, ErrUnclosed
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nl, nil
}

// Parse splits src and decodes its YAML frontmatter.
func Parse(src []byte) (*Parsed, error) {
	raw, body, had, nl, err := Split(src)
	if err != nil {
		return nil, err
	}
	fields, err := DecodeYAML(raw)
	if err != nil {
		return nil, err
	}
	line := 1
	if had {
		line += bytes.Count(src[:len(src)-len(body)], []byte("\n"))
	}
	return &Parsed{Fields: fields, Body: body, Had: had, Newline: nl, BodyLine: line}, nil
}

// DecodeYAML decodes a raw frontmatter block into a map. Empty input yields an empty map.
func DecodeYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Join writes fields and body back into a single document.
func Join(fields map[string]any, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}
	raw, err := Encode(fields)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(raw)+len(body)+8)
	out = append(out, "---\n"...)
	out = append(out, raw...)
	out = append(out, "---\n"...)
	return append(out, body...), nil
}

func newlineOf(src []byte) string {
	if i := bytes.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
