// Package responses defines JSON response types used by coursesite HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/coursesite/internal/search"
	"git.home.luguber.info/inful/coursesite/internal/site"
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// ReadyResponse is returned by /readyz.
type ReadyResponse struct {
	Status     string         `json:"status"`
	Generation uint64         `json:"generation"`
	Documents  int            `json:"documents"`
	PerLocale  map[string]int `json:"per_locale,omitempty"`
	Warnings   int            `json:"warnings"`
}

// DiscriminatorResponse is returned by /api/discriminator.
type DiscriminatorResponse struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Preimage string `json:"preimage"`
	Hex      string `json:"hex"`
	Rust     string `json:"rust"`
	Bytes    []int  `json:"bytes"`
}

// SearchResponse is returned by /api/search.
type SearchResponse struct {
	Query  string       `json:"query"`
	Locale string       `json:"locale"`
	Hits   []search.Hit `json:"hits"`
}

// RoutesResponse is returned by /api/routes.
type RoutesResponse struct {
	Generation uint64       `json:"generation"`
	Routes     []site.Route `json:"routes"`
}
