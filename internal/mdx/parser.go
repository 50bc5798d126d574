package mdx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

var (
	namedImport   = regexp.MustCompile(`^import\s+\{([^}]*)\}\s+from\s+["']([^"']+)["']\s*;?$`)
	defaultImport = regexp.MustCompile(`^import\s+([A-Za-z_$][\w$]*)\s+from\s+["']([^"']+)["']\s*;?$`)
	bareImport    = regexp.MustCompile(`^import\s+["']([^"']+)["']\s*;?$`)
	constExport   = regexp.MustCompile(`^export\s+const\s+([A-Za-z_$][\w$]*)\s*=\s*(.+?)\s*;?$`)
	identifier    = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

// Parse parses an MDX body whose first line is line 1.
func Parse(src []byte) (*Document, error) { return ParseAt(src, 1) }

// ParseAt parses an MDX body whose first line is firstLine in the source
// file, so reported line numbers point into the original file.
func ParseAt(src []byte, firstLine int) (*Document, error) {
	p := &parser{
		src:   strings.ReplaceAll(string(src), "\r\n", "\n"),
		base:  firstLine,
		doc:   &Document{},
		mdBeg: -1,
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

type parser struct {
	src   string
	base  int
	doc   *Document
	md    strings.Builder
	mdBeg int
}

func (p *parser) run() error {
	lines := strings.SplitAfter(p.src, "\n")
	offsets := make([]int, len(lines)+1)
	for i, l := range lines {
		offsets[i+1] = offsets[i] + len(l)
	}

	fence := ""
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		lineNo := p.base + i

		if fence != "" {
			p.text(line, lineNo)
			if closesFence(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if f := openFence(trimmed); f != "" {
			fence = f
			p.text(line, lineNo)
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "import ") || trimmed == "import":
			imp, err := parseImport(trimmed, lineNo)
			if err != nil {
				return err
			}
			p.doc.Imports = append(p.doc.Imports, imp)
		case strings.HasPrefix(trimmed, "export ") || trimmed == "export":
			m := constExport.FindStringSubmatch(trimmed)
			if m == nil {
				return syntaxError(lineNo, "only single-line `export const` statements are supported")
			}
			p.doc.Exports = append(p.doc.Exports, Export{Name: m[1], Value: m[2], Line: lineNo})
		case isClosingTag(trimmed):
			return syntaxError(lineNo, "unexpected closing tag "+strings.TrimRight(trimmed, " \t"))
		case isOpeningTag(trimmed):
			start := offsets[i] + (len(line) - len(strings.TrimLeft(line, " \t")))
			el, end, err := p.element(start, lineNo)
			if err != nil {
				return err
			}
			p.flush()
			p.doc.Segments = append(p.doc.Segments, Segment{Kind: SegmentComponent, Element: el, Line: lineNo})
			// resume on the line after the element
			for i+1 < len(lines) && offsets[i+1] < end {
				i++
			}
		default:
			p.text(line, lineNo)
		}
	}
	p.flush()
	return nil
}

func (p *parser) text(line string, lineNo int) {
	if p.mdBeg < 0 {
		if strings.TrimSpace(line) == "" {
			return
		}
		p.mdBeg = lineNo
	}
	p.md.WriteString(line)
}

func (p *parser) flush() {
	if p.mdBeg < 0 {
		return
	}
	text := strings.TrimRight(p.md.String(), " \t\n")
	if text != "" {
		p.doc.Segments = append(p.doc.Segments, Segment{Kind: SegmentMarkdown, Markdown: text + "\n", Line: p.mdBeg})
	}
	p.md.Reset()
	p.mdBeg = -1
}

// element parses a component starting at src[start] == '<' and returns the
// offset of the end of the line holding its closing '>'.
func (p *parser) element(start, lineNo int) (*Element, int, error) {
	tag, err := scanTag(p.src, start)
	if err != nil {
		return nil, 0, syntaxError(lineNo+strings.Count(p.src[start:tag.errAt], "\n"), err.Error())
	}
	el := &Element{Name: tag.name, Props: tag.props, SelfClosing: tag.selfClosing, Line: lineNo}

	if tag.selfClosing {
		end, err := p.restOfLine(tag.end, lineNo, start)
		return el, end, err
	}

	childStart := tag.end
	closeAt, closeEnd, err := p.findClose(tag.name, childStart, lineNo, start)
	if err != nil {
		return nil, 0, err
	}
	el.Children = trimChildren(p.src[childStart:closeAt])
	end, err := p.restOfLine(closeEnd, lineNo, start)
	return el, end, err
}

// restOfLine requires only whitespace between pos and the next newline.
func (p *parser) restOfLine(pos, lineNo, start int) (int, error) {
	nl := strings.IndexByte(p.src[pos:], '\n')
	rest := p.src[pos:]
	if nl >= 0 {
		rest = rest[:nl]
	}
	if strings.TrimSpace(rest) != "" {
		return 0, syntaxError(lineNo+strings.Count(p.src[start:pos], "\n"), "unexpected content after component tag: "+strings.TrimSpace(rest))
	}
	if nl < 0 {
		return len(p.src), nil
	}
	return pos + nl + 1, nil
}

// findClose locates the </name> that balances the opening tag, counting
// nested openings of the same name. Fenced code inside the children is skipped.
func (p *parser) findClose(name string, pos, lineNo, start int) (closeAt, closeEnd int, err error) {
	depth := 1
	fence := ""
	fenceLine := 0
	lineStart := false
	for pos < len(p.src) {
		if lineStart {
			eol := strings.IndexByte(p.src[pos:], '\n')
			if eol < 0 {
				eol = len(p.src) - pos
			}
			trimmed := strings.TrimSpace(p.src[pos : pos+eol])
			switch {
			case fence != "":
				if closesFence(trimmed, fence) {
					fence = ""
				}
				pos += eol + 1
				continue
			case openFence(trimmed) != "":
				fence = openFence(trimmed)
				fenceLine = lineNo + strings.Count(p.src[start:pos], "\n")
				pos += eol + 1
				continue
			}
			lineStart = false
		}

		c := p.src[pos]
		switch {
		case c == '\n':
			lineStart = true
			pos++
		case c == '<' && hasTagPrefix(p.src[pos:], "</"+name):
			gt := strings.IndexByte(p.src[pos:], '>')
			if gt < 0 || strings.TrimSpace(p.src[pos+2+len(name):pos+gt]) != "" {
				return 0, 0, syntaxError(lineNo+strings.Count(p.src[start:pos], "\n"), "malformed closing tag for <"+name+">")
			}
			depth--
			if depth == 0 {
				return pos, pos + gt + 1, nil
			}
			pos += gt + 1
		case c == '<' && hasTagPrefix(p.src[pos:], "<"+name):
			nested, err := scanTag(p.src, pos)
			if err != nil {
				return 0, 0, syntaxError(lineNo+strings.Count(p.src[start:nested.errAt], "\n"), err.Error())
			}
			if !nested.selfClosing {
				depth++
			}
			pos = nested.end
		default:
			pos++
		}
	}
	if fence != "" {
		return 0, 0, syntaxError(fenceLine, "unterminated code fence inside <"+name+">")
	}
	return 0, 0, syntaxError(lineNo, "unclosed <"+name+">")
}

// hasTagPrefix reports whether s starts with prefix followed by a tag delimiter.
func hasTagPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) || len(s) == len(prefix) {
		return false
	}
	switch s[len(prefix)] {
	case ' ', '\t', '\n', '\r', '/', '>':
		return true
	}
	return false
}

func trimChildren(s string) string {
	s = strings.TrimLeft(s, " \t")
	s = strings.TrimPrefix(s, "\n")
	lines := strings.Split(s, "\n")
	// drop the indentation-only line before the closing tag
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

func isOpeningTag(s string) bool {
	return len(s) > 1 && s[0] == '<' && s[1] >= 'A' && s[1] <= 'Z'
}

func isClosingTag(s string) bool {
	return len(s) > 2 && s[0] == '<' && s[1] == '/' && s[2] >= 'A' && s[2] <= 'Z'
}

func openFence(trimmed string) string {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, marker) {
			n := len(trimmed) - len(strings.TrimLeft(trimmed, marker[:1]))
			return trimmed[:n]
		}
	}
	return ""
}

func closesFence(trimmed, fence string) bool {
	return strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == ""
}

func parseImport(stmt string, lineNo int) (Import, error) {
	if m := namedImport.FindStringSubmatch(stmt); m != nil {
		imp := Import{Source: m[2], Line: lineNo}
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			local := part
			if orig, alias, ok := strings.Cut(part, " as "); ok {
				if !identifier.MatchString(strings.TrimSpace(orig)) {
					return Import{}, syntaxError(lineNo, "invalid import name "+strconv.Quote(orig))
				}
				local = strings.TrimSpace(alias)
			}
			if !identifier.MatchString(local) {
				return Import{}, syntaxError(lineNo, "invalid import name "+strconv.Quote(local))
			}
			imp.Names = append(imp.Names, local)
		}
		return imp, nil
	}
	if m := defaultImport.FindStringSubmatch(stmt); m != nil {
		return Import{Names: []string{m[1]}, Source: m[2], Line: lineNo}, nil
	}
	if m := bareImport.FindStringSubmatch(stmt); m != nil {
		return Import{Source: m[1], Line: lineNo}, nil
	}
	return Import{}, syntaxError(lineNo, "malformed import statement")
}

// SyntaxError describes a parse failure at a source line.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }

func syntaxError(line int, msg string) error {
	return derrors.WrapError(&SyntaxError{Line: line, Message: msg}, derrors.CategoryMDX, "mdx syntax error").
		WithContext("line", line).
		Build()
}
