package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa-backend/internal/documents"
	"docqa-backend/internal/llm"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/telemetry"
)

// DocumentLookup resolves a document owned by the caller.
type DocumentLookup interface {
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
}

// Service answers questions against a single document and records the exchange.
type Service struct {
	Documents DocumentLookup
	Generator llm.Generator
	Repo      Repo
	Now       func() time.Time
	NewID     func() string
}

// Ask loads the caller's document, generates an answer from its full text and
// persists the record. Nothing is persisted when generation fails.
func (s *Service) Ask(ctx context.Context, userID, documentID, question string) (Query, error) {
	documentID = strings.TrimSpace(documentID)
	if strings.TrimSpace(userID) == "" {
		return Query{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if documentID == "" {
		return Query{}, fmt.Errorf("%w: document_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(question) == "" {
		return Query{}, fmt.Errorf("%w: query_text is required", ErrInvalidInput)
	}

	doc, err := s.Documents.Get(ctx, userID, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			metrics.IncQuery("not_found")
			return Query{}, ErrNotFound
		}
		return Query{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	start := time.Now()
	answer, err := s.Generator.GenerateAnswer(ctx, doc.Content, question)
	metrics.ObserveGeneration(time.Since(start))
	if err == nil && strings.TrimSpace(answer) == "" {
		err = llm.ErrEmptyAnswer
	}
	if err != nil {
		metrics.IncQuery("generation_failed")
		telemetry.Error("queries.generation_failed", map[string]any{
			"documentId": doc.ID,
			"userId":     userID,
			"error":      err,
			"requestId":  telemetry.RequestIDFromContext(ctx),
		})
		return Query{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	record := Query{
		ID:           s.newID(),
		UserID:       userID,
		DocumentID:   doc.ID,
		QueryText:    question,
		ResponseText: answer,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		metrics.IncQuery("persist_failed")
		return Query{}, fmt.Errorf("%w: create query id=%s: %w", ErrPersistence, record.ID, err)
	}

	metrics.IncQuery("answered")
	telemetry.Info("queries.answered", map[string]any{
		"queryId":    record.ID,
		"documentId": doc.ID,
		"userId":     userID,
		"requestId":  telemetry.RequestIDFromContext(ctx),
	})
	return record, nil
}

// History lists the caller's query records, newest first.
func (s *Service) History(ctx context.Context, userID, documentID string) ([]Query, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	documentID = strings.TrimSpace(documentID)
	if documentID != "" {
		if _, err := uuid.Parse(documentID); err != nil {
			return []Query{}, nil
		}
	}
	out, err := s.Repo.ListByUser(ctx, userID, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: list queries: %w", ErrPersistence, err)
	}
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
