package queries

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const queryColumns = `id, user_id, document_id, query_text, response_text, created_at`

// Create inserts a query record.
func (r *PGRepo) Create(ctx context.Context, q Query) error {
	const query = `
INSERT INTO queries (
    id,
    user_id,
    document_id,
    query_text,
    response_text,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		q.ID,
		q.UserID,
		q.DocumentID,
		q.QueryText,
		q.ResponseText,
		q.CreatedAt,
	)
	return err
}

// ListByUser returns a user's query records, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID, documentID string) ([]Query, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if documentID == "" {
		const query = `
SELECT ` + queryColumns + `
FROM queries
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`
		rows, err = r.DB.QueryContext(ctx, query, userID)
	} else {
		const query = `
SELECT ` + queryColumns + `
FROM queries
WHERE user_id = $1 AND document_id = $2
ORDER BY created_at DESC, id DESC`
		rows, err = r.DB.QueryContext(ctx, query, userID, documentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Query{}
	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.ID, &q.UserID, &q.DocumentID, &q.QueryText, &q.ResponseText, &q.CreatedAt); err != nil {
			return nil, err
		}
		q.CreatedAt = q.CreatedAt.UTC()
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
