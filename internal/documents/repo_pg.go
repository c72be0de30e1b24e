package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, file_name, content_type, storage_key, content, metadata, created_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    content_type,
    storage_key,
    content,
    metadata,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.ContentType,
		doc.StorageKey,
		doc.Content,
		metadata,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1 AND id = $2
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, userID, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser returns a user's documents, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

// Delete removes a user's document.
func (r *PGRepo) Delete(ctx context.Context, userID, documentID string) error {
	const query = `DELETE FROM documents WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, documentID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPage returns documents oldest first; an empty userID pages across all owners.
func (r *PGRepo) ListPage(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		const query = `
SELECT ` + documentColumns + `
FROM documents
ORDER BY created_at ASC, id ASC
LIMIT $1 OFFSET $2`
		rows, err = r.DB.QueryContext(ctx, query, limit, offset)
	} else {
		const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2 OFFSET $3`
		rows, err = r.DB.QueryContext(ctx, query, userID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var contentType sql.NullString
	var content sql.NullString
	var metadata []byte
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&contentType,
		&doc.StorageKey,
		&content,
		&metadata,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if contentType.Valid {
		doc.ContentType = contentType.String
	}
	if content.Valid {
		doc.Content = content.String
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return Document{}, fmt.Errorf("decode metadata id=%s: %w", doc.ID, err)
		}
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	defer rows.Close()
	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

var _ Repo = (*PGRepo)(nil)
