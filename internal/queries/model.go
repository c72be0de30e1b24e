package queries

import "time"

// Query is an answered question about one document. Records are immutable and
// outlive the document they reference.
type Query struct {
	ID           string
	UserID       string
	DocumentID   string
	QueryText    string
	ResponseText string
	CreatedAt    time.Time
}
