package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"docqa-backend/internal/documents"
)

var errBoom = errors.New("boom")

const docID = "0b8f6c3e-2a1d-4e5f-8a9b-7c6d5e4f3a2b"

type stubLookup map[string]documents.Document

func (s stubLookup) Get(_ context.Context, userID, documentID string) (documents.Document, error) {
	doc, ok := s[documentID]
	if !ok || doc.UserID != userID {
		return documents.Document{}, documents.ErrNotFound
	}
	return doc, nil
}

type stubGenerator struct {
	answer  string
	err     error
	calls   int
	context string
}

func (g *stubGenerator) GenerateAnswer(_ context.Context, documentContext, _ string) (string, error) {
	g.calls++
	g.context = documentContext
	return g.answer, g.err
}

type failingRepo struct{ *MemoryRepo }

func (failingRepo) Create(context.Context, Query) error { return errBoom }

func newTestService(gen *stubGenerator) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	lookup := stubLookup{docID: {ID: docID, UserID: "user-1", Content: "hello world"}}
	return &Service{Documents: lookup, Generator: gen, Repo: repo}, repo
}

func TestAskPersistsOneRecord(t *testing.T) {
	gen := &stubGenerator{answer: "It says hello."}
	svc, repo := newTestService(gen)

	q, err := svc.Ask(context.Background(), "user-1", docID, "What does it say?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if q.ResponseText != "It says hello." || q.DocumentID != docID || q.CreatedAt.IsZero() {
		t.Fatalf("unexpected record %+v", q)
	}
	if gen.context != "hello world" {
		t.Fatalf("expected full document text as context, got %q", gen.context)
	}

	records, _ := repo.ListByUser(context.Background(), "user-1", docID)
	if len(records) != 1 || records[0].QueryText != "What does it say?" {
		t.Fatalf("expected exactly one record, got %+v", records)
	}
}

func TestAskValidation(t *testing.T) {
	gen := &stubGenerator{answer: "x"}
	svc, _ := newTestService(gen)

	for _, tc := range []struct{ user, doc, question string }{
		{"", docID, "q"},
		{"user-1", "", "q"},
		{"user-1", docID, "   "},
	} {
		if _, err := svc.Ask(context.Background(), tc.user, tc.doc, tc.question); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", tc, err)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("generator should not be called on invalid input")
	}
}

func TestAskForeignDocumentIsNotFound(t *testing.T) {
	gen := &stubGenerator{answer: "x"}
	svc, repo := newTestService(gen)

	if _, err := svc.Ask(context.Background(), "intruder", docID, "q"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator should not see a foreign document")
	}
	records, _ := repo.ListByUser(context.Background(), "intruder", "")
	if len(records) != 0 {
		t.Fatalf("expected no records")
	}
}

func TestAskGenerationFailurePersistsNothing(t *testing.T) {
	for name, gen := range map[string]*stubGenerator{
		"error": {err: errBoom},
		"blank": {answer: "  \n"},
	} {
		t.Run(name, func(t *testing.T) {
			svc, repo := newTestService(gen)
			if _, err := svc.Ask(context.Background(), "user-1", docID, "q"); !errors.Is(err, ErrGeneration) {
				t.Fatalf("expected ErrGeneration, got %v", err)
			}
			records, _ := repo.ListByUser(context.Background(), "user-1", "")
			if len(records) != 0 {
				t.Fatalf("expected no records, got %d", len(records))
			}
		})
	}
}

func TestAskPersistenceFailure(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{answer: "x"})
	svc.Repo = failingRepo{NewMemoryRepo()}

	if _, err := svc.Ask(context.Background(), "user-1", docID, "q"); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestHistoryNewestFirstWithFilter(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{answer: "x"})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	first, _ := svc.Ask(context.Background(), "user-1", docID, "one")
	second, _ := svc.Ask(context.Background(), "user-1", docID, "two")

	all, err := svc.History(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("unexpected order %+v", all)
	}

	other, err := svc.History(context.Background(), "user-1", "not-a-uuid")
	if err != nil || len(other) != 0 {
		t.Fatalf("expected empty history for malformed id, got %v %v", other, err)
	}
}

func TestPGRepoListByDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("WHERE user_id = \\$1 AND document_id = \\$2").
		WithArgs("user-1", docID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "document_id", "query_text", "response_text", "created_at"}).
			AddRow("q-1", "user-1", docID, "q", "a", now))

	out, err := repo.ListByUser(context.Background(), "user-1", docID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(out) != 1 || out[0].ResponseText != "a" {
		t.Fatalf("unexpected rows %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
