package mdx

import (
	"fmt"
	"slices"
)

// Problem is a semantic issue found by Check.
type Problem struct {
	Line      int
	Component string
	Message   string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}

// Check verifies that every imported name is a registered component, every
// used component is imported and registered, and required props are set.
// Children of components that accept MDX are checked recursively.
func Check(doc *Document, reg Registry) []Problem {
	var problems []Problem
	for _, imp := range doc.Imports {
		for _, name := range imp.Names {
			if _, ok := reg.Lookup(name); !ok {
				problems = append(problems, Problem{Line: imp.Line, Component: name,
					Message: fmt.Sprintf("import %q from %q does not resolve to a known component", name, imp.Source)})
			}
		}
	}
	return checkElements(doc, doc.Elements(), reg, problems)
}

func checkElements(doc *Document, elements []*Element, reg Registry, problems []Problem) []Problem {
	for _, el := range elements {
		if !doc.Imported(el.Name) {
			problems = append(problems, Problem{Line: el.Line, Component: el.Name,
				Message: fmt.Sprintf("<%s> is used but not imported", el.Name)})
		}
		comp, ok := reg.Lookup(el.Name)
		if !ok {
			problems = append(problems, Problem{Line: el.Line, Component: el.Name,
				Message: fmt.Sprintf("<%s> is not a known component", el.Name)})
			continue
		}
		for _, req := range comp.Required() {
			if !el.Props.Has(req) {
				problems = append(problems, Problem{Line: el.Line, Component: el.Name,
					Message: fmt.Sprintf("<%s> is missing required prop %q", el.Name, req)})
			}
		}
		if comp.RawChildren() || el.Children == "" {
			continue
		}
		child, err := ParseAt([]byte(el.Children), el.Line+1)
		if err != nil {
			problems = append(problems, Problem{Line: el.Line, Component: el.Name, Message: err.Error()})
			continue
		}
		problems = checkElements(doc, child.Elements(), reg, problems)
	}
	slices.SortStableFunc(problems, func(a, b Problem) int { return a.Line - b.Line })
	return problems
}
