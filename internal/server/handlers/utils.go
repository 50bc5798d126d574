// Package handlers implements the coursesite HTTP endpoints.
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

// writeJSON encodes v into a buffer first so a failed encode never sends a
// partial body.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}

// writeJSONPretty indents the output when ?pretty=1 or ?pretty=true.
func writeJSONPretty(w http.ResponseWriter, r *http.Request, status int, v any) error {
	if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err == nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			_, err = w.Write(append(b, '\n'))
			return err
		}
		slog.Warn("pretty JSON marshal failed, falling back to standard encode", logfields.Error(err))
	}
	return writeJSON(w, status, v)
}

// requireMethod writes a validation error and returns false unless r uses
// one of the allowed methods.
func requireMethod(adapter *derrors.HTTPErrorAdapter, w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	for _, m := range allowed {
		if r.Method == m {
			return true
		}
	}
	err := derrors.ValidationError("invalid HTTP method").
		WithContext("method", r.Method).
		WithContext("allowed_methods", allowed).
		Build()
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	adapter.WriteErrorResponse(w, r, err)
	return false
}
