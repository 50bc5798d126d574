package mdx

import (
	"slices"
	"strconv"
)

// PropKind identifies the type of a prop value.
type PropKind int

const (
	PropString PropKind = iota
	PropNumber
	PropBool
	// PropExpression is any other braced expression, kept verbatim in String.
	PropExpression
)

// Prop is a typed component attribute value.
type Prop struct {
	Kind   PropKind
	String string
	Number float64
	Bool   bool
}

// Text returns the prop as display text regardless of kind.
func (p Prop) Text() string {
	switch p.Kind {
	case PropNumber:
		return strconv.FormatFloat(p.Number, 'f', -1, 64)
	case PropBool:
		return strconv.FormatBool(p.Bool)
	}
	return p.String
}

// Props are the attributes of a component invocation.
type Props map[string]Prop

// Has reports whether name was given.
func (p Props) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// String returns the text of name, or def when absent.
func (p Props) String(name, def string) string {
	if v, ok := p[name]; ok {
		return v.Text()
	}
	return def
}

// Bool returns a boolean prop. Bare attributes are true; "true"/"false"
// strings are accepted.
func (p Props) Bool(name string) bool {
	v, ok := p[name]
	if !ok {
		return false
	}
	switch v.Kind {
	case PropBool:
		return v.Bool
	case PropNumber:
		return v.Number != 0
	}
	b, _ := strconv.ParseBool(v.String)
	return b
}

// Element is a component invocation in the source.
type Element struct {
	Name        string
	Props       Props
	Children    string
	SelfClosing bool
	Line        int
}

// SegmentKind distinguishes markdown from component segments.
type SegmentKind int

const (
	SegmentMarkdown SegmentKind = iota
	SegmentComponent
)

// Segment is one ordered piece of a document body.
type Segment struct {
	Kind     SegmentKind
	Markdown string
	Element  *Element
	Line     int
}

// Import is an `import ... from "..."` statement.
type Import struct {
	Names  []string // local names; empty for side-effect imports
	Source string
	Line   int
}

// Export is a single-line `export const` statement.
type Export struct {
	Name  string
	Value string
	Line  int
}

// Document is a parsed MDX body.
type Document struct {
	Imports  []Import
	Exports  []Export
	Segments []Segment
}

// Imported reports whether name is bound by an import.
func (d *Document) Imported(name string) bool {
	for _, imp := range d.Imports {
		if slices.Contains(imp.Names, name) {
			return true
		}
	}
	return false
}

// Elements returns the top-level component invocations in order.
func (d *Document) Elements() []*Element {
	var out []*Element
	for _, s := range d.Segments {
		if s.Kind == SegmentComponent {
			out = append(out, s.Element)
		}
	}
	return out
}
