// Package memory provides the durable side of a run: thread bookkeeping and
// the save queue that flushes conversation history before a step yields
// control.
package memory

import (
	"context"
	"errors"
	"time"
)

// ErrThreadNotFound is returned by Store.GetThreadByID for unknown ids.
var ErrThreadNotFound = errors.New("memory: thread not found")

// Thread groups the persisted messages of one conversation.
type Thread struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId,omitempty"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store is the long-term thread registry the step consults before flushing.
type Store interface {
	GetThreadByID(ctx context.Context, id string) (*Thread, error)
	CreateThread(ctx context.Context, thread *Thread) (*Thread, error)
}

// Config tunes what a flush persists. It travels opaquely from the step's
// caller down to the persister.
type Config struct {
	// LastMessages caps how many trailing messages a flush writes.
	// Zero keeps everything.
	LastMessages int `json:"lastMessages,omitempty"`
	// Scope optionally namespaces persistence per resource.
	Scope string `json:"scope,omitempty"`
}
