// Package events publishes content change notifications.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names an event kind.
type Type string

const (
	// TypeContentReloaded is emitted after a new content tree is published.
	TypeContentReloaded Type = "content.reloaded"
	// TypeContentReloadFailed is emitted when a reload leaves the old tree in place.
	TypeContentReloadFailed Type = "content.reload_failed"
	// TypeContentSynced is emitted when a git sync brought new commits.
	TypeContentSynced Type = "content.synced"
)

// Event is the JSON payload published for each notification.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Generation uint64    `json:"generation"`
	Documents  int       `json:"documents"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error,omitempty"`
	Revision   string    `json:"revision,omitempty"`
}

// New returns an event of type t with a fresh ID and timestamp.
func New(t Type, generation uint64, documents int) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Generation: generation,
		Documents:  documents,
		Timestamp:  time.Now().UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
