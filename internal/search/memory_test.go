package search

import (
	"context"
	"testing"
	"time"
)

func TestMemoryIndexReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	entry := Entry{UserID: "user-1", FileName: "a.txt", Content: "first", CreatedAt: time.Now().UTC()}
	if err := idx.Index(ctx, "doc-1", entry); err != nil {
		t.Fatalf("index: %v", err)
	}
	entry.Content = "second"
	if err := idx.Index(ctx, "doc-1", entry); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	got, ok := idx.Get("doc-1")
	if !ok || got.Content != "second" || got.DocumentID != "doc-1" {
		t.Fatalf("unexpected entry %#v ok=%v", got, ok)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", idx.Len())
	}

	if err := idx.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := idx.Get("doc-1"); ok {
		t.Fatalf("expected entry removed")
	}
}

func TestMemoryIndexDeleteMissingIsNoop(t *testing.T) {
	idx := NewMemoryIndex()
	if err := idx.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestMemoryIndexHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryIndex().Index(ctx, "doc-1", Entry{}); err == nil {
		t.Fatalf("expected context error")
	}
}
