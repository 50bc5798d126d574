// Package errors provides the classified error primitives used across coursesite.
//
// Every error that crosses a package boundary (content loading, MDX parsing,
// rendering, configuration) is expected to be a ClassifiedError so that the
// HTTP and CLI adapters can pick a status code or exit code without string
// matching.
//
//	err := errors.NewError(errors.CategoryMDX, "unclosed component").
//		WithContext("component", "Codeblock").
//		WithContext("line", 42).
//		Build()
package errors
