// Package mdx parses the MDX subset used by course content and renders it to
// HTML.
//
// A document is a sequence of segments. Markdown segments go through goldmark
// and are sanitized; component segments are dispatched to a Registry. Import
// and export statements are recorded and removed from the output. Fenced code
// is opaque: nothing inside a fence is treated as a component or an import.
//
// Supported prop syntax:
//
//	<Name a="x" b='x' c={"x"} d={123} e={true} f={`x`} g />
package mdx
