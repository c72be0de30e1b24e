package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa-backend/internal/extract"
	"docqa-backend/internal/queue"
	"docqa-backend/internal/search"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/storage/object"
	"docqa-backend/internal/shared/telemetry"
	"docqa-backend/internal/shared/util"
)

const defaultReindexBatch = 100

// Extractor turns uploaded bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string, fileName string) (extract.Result, error)
}

// Service coordinates the blob store, metadata store and search index for documents.
// Notifier, Now and NewID are optional.
type Service struct {
	Store     object.ObjectStore
	Repo      Repo
	Index     search.Index
	Extractor Extractor
	Notifier  queue.Client
	Now       func() time.Time
	NewID     func() string
}

// ReindexReport summarizes a Reindex run.
type ReindexReport struct {
	Scanned int
	Indexed int
	Failed  int
}

// Ingest stores the upload, extracts its text, records the document and indexes it.
// A failure before the row is written leaves no blob behind; an index failure is
// logged for reconciliation and does not fail the call.
func (s *Service) Ingest(ctx context.Context, userID, fileName, contentType string, data []byte) (Document, error) {
	if strings.TrimSpace(userID) == "" {
		return Document{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	contentType = extract.DetectContentType(contentType, name, data)

	docID := s.newID()
	key := object.Key(userID, s.newID(), name)
	fields := map[string]any{
		"documentId": docID,
		"userId":     userID,
		"storageKey": key,
		"requestId":  telemetry.RequestIDFromContext(ctx),
	}

	if err := s.Store.Put(ctx, key, data, contentType); err != nil {
		metrics.IncIngestFailed("blob")
		return Document{}, fmt.Errorf("%w: put blob key=%s: %w", ErrStorage, key, err)
	}

	extracted, err := s.Extractor.Extract(ctx, data, contentType, name)
	if err != nil {
		metrics.IncIngestFailed("extract")
		s.removeBlob(ctx, docID, userID, key, "extract_failed")
		return Document{}, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	doc := Document{
		ID:          docID,
		UserID:      userID,
		FileName:    name,
		ContentType: contentType,
		StorageKey:  key,
		Content:     extracted.Text,
		Metadata: Metadata{
			Size:                int64(len(data)),
			ParsedElementsCount: extracted.Elements,
		},
		CreatedAt: s.now(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		metrics.IncIngestFailed("metadata")
		s.removeBlob(ctx, docID, userID, key, "metadata_failed")
		return Document{}, fmt.Errorf("%w: create document id=%s: %w", ErrPersistence, docID, err)
	}

	if err := s.Index.Index(ctx, doc.ID, toEntry(doc)); err != nil {
		metrics.IncIndexFailed("index")
		fields["error"] = err
		telemetry.Error("documents.index_failed", fields)
		s.notify(ctx, queue.Message{
			Kind:       queue.KindIndexMissing,
			DocumentID: doc.ID,
			UserID:     userID,
			Reason:     "index_failed",
		})
	}

	metrics.IncDocumentIngested()
	telemetry.Info("documents.ingested", map[string]any{
		"documentId": doc.ID,
		"userId":     userID,
		"size":       doc.Metadata.Size,
		"elements":   doc.Metadata.ParsedElementsCount,
		"requestId":  fields["requestId"],
	})
	return doc, nil
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	docs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", ErrPersistence, err)
	}
	return docs, nil
}

// Get returns one of the caller's documents.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if strings.TrimSpace(userID) == "" || !validID(documentID) {
		return Document{}, ErrNotFound
	}
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("%w: load document id=%s: %w", ErrPersistence, documentID, err)
	}
	return doc, nil
}

// Delete removes the blob, then the row, then the index entry. The row is removed even
// when the blob delete fails; the first failure is returned. Index cleanup never fails the call.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return err
	}

	var firstErr error
	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
			firstErr = fmt.Errorf("%w: delete blob key=%s: %w", ErrStorage, doc.StorageKey, err)
			telemetry.Error("documents.blob_delete_failed", map[string]any{
				"documentId": doc.ID,
				"userId":     userID,
				"storageKey": doc.StorageKey,
				"error":      err,
				"requestId":  telemetry.RequestIDFromContext(ctx),
			})
			s.notify(ctx, queue.Message{
				Kind:       queue.KindOrphanBlob,
				DocumentID: doc.ID,
				UserID:     userID,
				StorageKey: doc.StorageKey,
				Reason:     "delete_failed",
			})
		}
	}

	if err := s.Repo.Delete(ctx, userID, doc.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Removed concurrently; the other caller owns index cleanup.
			if firstErr != nil {
				return firstErr
			}
			return ErrNotFound
		}
		if firstErr != nil {
			return firstErr
		}
		return fmt.Errorf("%w: delete document id=%s: %w", ErrPersistence, doc.ID, err)
	}

	s.removeIndexEntry(ctx, doc)
	metrics.IncDocumentDeleted()
	telemetry.Info("documents.deleted", map[string]any{
		"documentId": doc.ID,
		"userId":     userID,
		"requestId":  telemetry.RequestIDFromContext(ctx),
	})
	return firstErr
}

// Reindex replays every document row (or one owner's when userID is set) into the
// search index. Per-document failures are counted and the walk continues.
func (s *Service) Reindex(ctx context.Context, userID string, batchSize int) (ReindexReport, error) {
	if batchSize <= 0 {
		batchSize = defaultReindexBatch
	}

	var report ReindexReport
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		page, err := s.Repo.ListPage(ctx, userID, batchSize, offset)
		if err != nil {
			return report, fmt.Errorf("%w: list page offset=%d: %w", ErrPersistence, offset, err)
		}
		for _, doc := range page {
			report.Scanned++
			if err := s.Index.Index(ctx, doc.ID, toEntry(doc)); err != nil {
				report.Failed++
				metrics.IncIndexFailed("reindex")
				telemetry.Error("documents.reindex_failed", map[string]any{
					"documentId": doc.ID,
					"userId":     doc.UserID,
					"error":      err,
				})
				continue
			}
			report.Indexed++
		}
		if len(page) < batchSize {
			break
		}
	}

	telemetry.Info("documents.reindex_complete", map[string]any{
		"userId":  userID,
		"scanned": report.Scanned,
		"indexed": report.Indexed,
		"failed":  report.Failed,
	})
	return report, nil
}

// Reconcile repairs the inconsistency described by a reconcile notice. It is
// idempotent; a returned error means the notice should be retried.
func (s *Service) Reconcile(ctx context.Context, msg queue.Message) error {
	switch msg.Kind {
	case queue.KindOrphanBlob:
		return s.reconcileBlob(ctx, msg)
	case queue.KindIndexMissing, queue.KindIndexStale:
		return s.reconcileIndex(ctx, msg)
	default:
		return fmt.Errorf("%w: unknown reconcile kind %q", ErrInvalidInput, msg.Kind)
	}
}

func (s *Service) reconcileBlob(ctx context.Context, msg queue.Message) error {
	if strings.TrimSpace(msg.StorageKey) == "" {
		return fmt.Errorf("%w: storage key is required", ErrInvalidInput)
	}
	if validID(msg.DocumentID) {
		doc, err := s.Repo.GetByID(ctx, msg.UserID, msg.DocumentID)
		switch {
		case err == nil && doc.StorageKey == msg.StorageKey:
			// Still referenced by a live row.
			return nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return fmt.Errorf("%w: load document id=%s: %w", ErrPersistence, msg.DocumentID, err)
		}
	}
	if err := s.Store.Delete(ctx, msg.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("%w: delete blob key=%s: %w", ErrStorage, msg.StorageKey, err)
	}
	return nil
}

func (s *Service) reconcileIndex(ctx context.Context, msg queue.Message) error {
	if !validID(msg.DocumentID) {
		return fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	doc, err := s.Repo.GetByID(ctx, msg.UserID, msg.DocumentID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: load document id=%s: %w", ErrPersistence, msg.DocumentID, err)
		}
		if err := s.Index.Delete(ctx, msg.DocumentID); err != nil && !errors.Is(err, search.ErrNotFound) {
			return fmt.Errorf("delete index entry id=%s: %w", msg.DocumentID, err)
		}
		return nil
	}
	if err := s.Index.Index(ctx, doc.ID, toEntry(doc)); err != nil {
		return fmt.Errorf("index document id=%s: %w", doc.ID, err)
	}
	return nil
}

// removeBlob compensates a blob written by a failed ingestion. The delete runs even
// if the request has been canceled.
func (s *Service) removeBlob(ctx context.Context, docID, userID, key, reason string) {
	cctx := context.WithoutCancel(ctx)
	if err := s.Store.Delete(cctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		metrics.IncOrphanBlob()
		telemetry.Error("documents.orphan_blob", map[string]any{
			"documentId": docID,
			"userId":     userID,
			"storageKey": key,
			"reason":     reason,
			"error":      err,
			"requestId":  telemetry.RequestIDFromContext(ctx),
		})
		s.notify(cctx, queue.Message{
			Kind:       queue.KindOrphanBlob,
			DocumentID: docID,
			UserID:     userID,
			StorageKey: key,
			Reason:     reason,
		})
	}
}

func (s *Service) removeIndexEntry(ctx context.Context, doc Document) {
	cctx := context.WithoutCancel(ctx)
	err := s.Index.Delete(cctx, doc.ID)
	if err == nil || errors.Is(err, search.ErrNotFound) {
		return
	}
	metrics.IncIndexFailed("delete")
	telemetry.Error("documents.index_delete_failed", map[string]any{
		"documentId": doc.ID,
		"userId":     doc.UserID,
		"error":      err,
		"requestId":  telemetry.RequestIDFromContext(ctx),
	})
	s.notify(cctx, queue.Message{
		Kind:       queue.KindIndexStale,
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		Reason:     "delete_failed",
	})
}

func (s *Service) notify(ctx context.Context, msg queue.Message) {
	if s.Notifier == nil {
		return
	}
	msg.Version = queue.CurrentVersion
	msg.EnqueuedAt = s.now().Format(time.RFC3339)
	msg.RequestID = telemetry.RequestIDFromContext(ctx)
	if err := s.Notifier.Send(ctx, msg); err != nil {
		telemetry.Error("documents.reconcile_notify_failed", map[string]any{
			"kind":       string(msg.Kind),
			"documentId": msg.DocumentID,
			"userId":     msg.UserID,
			"storageKey": msg.StorageKey,
			"error":      err,
		})
	}
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

func validID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

func toEntry(doc Document) search.Entry {
	return search.Entry{
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		FileName:   doc.FileName,
		Content:    doc.Content,
		CreatedAt:  doc.CreatedAt,
	}
}
