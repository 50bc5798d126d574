package mdx

import (
	"errors"
	"strconv"
	"strings"
)

type tag struct {
	name        string
	props       Props
	selfClosing bool
	end         int // offset just past '>'
	errAt       int // offset of a scan error
}

func isNameByte(c byte, first bool) bool {
	if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' {
		return true
	}
	return !first && (c >= '0' && c <= '9' || c == '.')
}

func isAttrByte(c byte) bool {
	return isNameByte(c, false) || c == '-' || c == ':'
}

// scanTag parses a JSX opening tag starting at s[pos] == '<'.
func scanTag(s string, pos int) (tag, error) {
	t := tag{props: Props{}, errAt: pos}
	i := pos + 1
	for i < len(s) && isNameByte(s[i], i == pos+1) {
		i++
	}
	t.name = s[pos+1 : i]
	if t.name == "" {
		return t, errors.New("missing component name")
	}

	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		t.errAt = i
		if i >= len(s) {
			t.errAt = pos
			return t, errors.New("unterminated <" + t.name + "> tag")
		}
		switch {
		case strings.HasPrefix(s[i:], "/>"):
			t.selfClosing = true
			t.end = i + 2
			return t, nil
		case s[i] == '>':
			t.end = i + 1
			return t, nil
		}

		nameStart := i
		for i < len(s) && isAttrByte(s[i]) {
			i++
		}
		attr := s[nameStart:i]
		if attr == "" {
			return t, errors.New("malformed props on <" + t.name + ">: unexpected " + strconv.QuoteRune(rune(s[i])))
		}
		if _, dup := t.props[attr]; dup {
			return t, errors.New("duplicate prop " + attr + " on <" + t.name + ">")
		}
		if i >= len(s) || s[i] != '=' {
			t.props[attr] = Prop{Kind: PropBool, Bool: true}
			continue
		}
		i++ // '='

		var (
			val Prop
			err error
		)
		if i >= len(s) {
			return t, errors.New("missing value for prop " + attr)
		}
		switch s[i] {
		case '"', '\'':
			end := strings.IndexByte(s[i+1:], s[i])
			if end < 0 {
				return t, errors.New("unterminated string for prop " + attr)
			}
			val = Prop{Kind: PropString, String: s[i+1 : i+1+end]}
			i += end + 2
		case '{':
			end, scanErr := matchBrace(s, i)
			if scanErr != nil {
				return t, errors.New(scanErr.Error() + " in prop " + attr)
			}
			val, err = parseExpression(s[i+1 : end])
			if err != nil {
				return t, errors.New("malformed prop " + attr + ": " + err.Error())
			}
			i = end + 1
		default:
			return t, errors.New("malformed prop " + attr + ": value must be quoted or braced")
		}
		t.props[attr] = val
	}
}

// matchBrace returns the index of the '}' that closes s[open].
func matchBrace(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '`':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return 0, errors.New("unterminated string")
			}
			i += end + 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errors.New("unterminated expression")
}

func parseExpression(expr string) (Prop, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Prop{}, errors.New("empty expression")
	}
	switch expr {
	case "true":
		return Prop{Kind: PropBool, Bool: true}, nil
	case "false":
		return Prop{Kind: PropBool, Bool: false}, nil
	}
	if n, err := strconv.ParseFloat(expr, 64); err == nil {
		return Prop{Kind: PropNumber, Number: n}, nil
	}
	if q := expr[0]; len(expr) >= 2 && (q == '"' || q == '\'' || q == '`') && expr[len(expr)-1] == q {
		inner := expr[1 : len(expr)-1]
		if strings.IndexByte(inner, q) >= 0 && !strings.Contains(inner, `\`+string(q)) {
			return Prop{Kind: PropExpression, String: expr}, nil
		}
		if q == '"' {
			if s, err := strconv.Unquote(expr); err == nil {
				return Prop{Kind: PropString, String: s}, nil
			}
		}
		return Prop{Kind: PropString, String: strings.ReplaceAll(inner, `\`+string(q), string(q))}, nil
	}
	return Prop{Kind: PropExpression, String: expr}, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
