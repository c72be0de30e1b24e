package queries

import "time"

type askRequest struct {
	DocumentID string `json:"document_id"`
	QueryText  string `json:"query_text"`
}

// AnswerResponse is returned by POST /query.
type AnswerResponse struct {
	ResponseText string    `json:"response_text"`
	DocumentID   string    `json:"document_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// QueryResponse is one entry of GET /queries.
type QueryResponse struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	QueryText    string    `json:"query_text"`
	ResponseText string    `json:"response_text"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAnswer(q Query) AnswerResponse {
	return AnswerResponse{
		ResponseText: q.ResponseText,
		DocumentID:   q.DocumentID,
		CreatedAt:    q.CreatedAt,
	}
}

func toResponses(qs []Query) []QueryResponse {
	out := make([]QueryResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, QueryResponse{
			ID:           q.ID,
			DocumentID:   q.DocumentID,
			QueryText:    q.QueryText,
			ResponseText: q.ResponseText,
			CreatedAt:    q.CreatedAt,
		})
	}
	return out
}
