package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"docqa-backend/internal/extract"
	"docqa-backend/internal/queue"
	"docqa-backend/internal/search"
	"docqa-backend/internal/shared/storage/object"
)

var errBoom = errors.New("boom")

type memStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	putErr    error
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// failingRepo wraps a MemoryRepo and fails selected operations.
type failingRepo struct {
	*MemoryRepo
	createErr error
	deleteErr error
}

func (r *failingRepo) Create(ctx context.Context, doc Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryRepo.Create(ctx, doc)
}

func (r *failingRepo) Delete(ctx context.Context, userID, documentID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.MemoryRepo.Delete(ctx, userID, documentID)
}

// failingIndex wraps a MemoryIndex and fails selected operations.
type failingIndex struct {
	*search.MemoryIndex
	indexErr  error
	deleteErr error
	failIDs   map[string]bool
}

func (i *failingIndex) Index(ctx context.Context, documentID string, entry search.Entry) error {
	if i.indexErr != nil || i.failIDs[documentID] {
		return errBoom
	}
	return i.MemoryIndex.Index(ctx, documentID, entry)
}

func (i *failingIndex) Delete(ctx context.Context, documentID string) error {
	if i.deleteErr != nil {
		return i.deleteErr
	}
	return i.MemoryIndex.Delete(ctx, documentID)
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, []byte, string, string) (extract.Result, error) {
	return extract.Result{}, extract.ErrUnsupported
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []queue.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg queue.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) kinds() []queue.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]queue.Kind, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Kind)
	}
	return out
}

type fixture struct {
	svc      *Service
	store    *memStore
	repo     *failingRepo
	index    *failingIndex
	notifier *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemStore(),
		repo:     &failingRepo{MemoryRepo: NewMemoryRepo()},
		index:    &failingIndex{MemoryIndex: search.NewMemoryIndex()},
		notifier: &recordingNotifier{},
	}
	f.svc = &Service{
		Store:     f.store,
		Repo:      f.repo,
		Index:     f.index,
		Extractor: extract.New(),
		Notifier:  f.notifier,
	}
	return f
}
