package documents

import "context"

// Repo defines persistence operations for documents. Reads and deletes are
// scoped by owner; a document owned by someone else is reported as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	Delete(ctx context.Context, userID, documentID string) error
	// ListPage walks all documents (or one owner's when userID is set) oldest first.
	ListPage(ctx context.Context, userID string, limit, offset int) ([]Document, error)
}
