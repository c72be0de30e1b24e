// Package search defines the search index contract that keeps a derived,
// rebuildable copy of every document's text keyed by document id.
package search

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound may be returned by Delete implementations for a missing entry.
// Callers treat it as success.
var ErrNotFound = errors.New("index entry not found")

// Entry is the indexed projection of a document.
type Entry struct {
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	FileName   string    `json:"file_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Index stores entries keyed by document id. Index replaces an existing entry;
// Delete of a missing id is not an error.
type Index interface {
	Index(ctx context.Context, documentID string, entry Entry) error
	Delete(ctx context.Context, documentID string) error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Nop discards every write. Used when indexing is disabled.
type Nop struct{}

func (Nop) Index(context.Context, string, Entry) error { return nil }
func (Nop) Delete(context.Context, string) error       { return nil }

var _ Index = Nop{}
