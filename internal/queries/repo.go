package queries

import "context"

// Repo persists query records.
type Repo interface {
	Create(ctx context.Context, q Query) error
	// ListByUser returns records newest first; a non-empty documentID filters by document.
	ListByUser(ctx context.Context, userID, documentID string) ([]Query, error)
}
