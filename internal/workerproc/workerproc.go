// Package workerproc decodes and dispatches reconcile notices received by the worker.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"docqa-backend/internal/queue"
	"docqa-backend/internal/shared/telemetry"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrInvalidMessage indicates a decoded message that can never be processed.
type ErrInvalidMessage struct {
	Meta      MessageMeta
	RequestID string
	Reason    string
}

func (e ErrInvalidMessage) Error() string { return "invalid message: " + e.Reason }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	Kind       queue.Kind
	DocumentID string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "reconcile"
	}
	return "reconcile: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Reconciler repairs the inconsistency described by a notice.
type Reconciler interface {
	Reconcile(ctx context.Context, msg queue.Message) error
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if reason := invalidReason(msg); reason != "" {
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: reason}
	}
	return msg, meta, nil
}

func invalidReason(msg queue.Message) string {
	if !msg.Kind.Valid() {
		return "unknown kind " + string(msg.Kind)
	}
	if msg.Version > queue.CurrentVersion {
		return "unsupported version"
	}
	switch msg.Kind {
	case queue.KindOrphanBlob:
		if strings.TrimSpace(msg.StorageKey) == "" {
			return "missing storage key"
		}
	default:
		if strings.TrimSpace(msg.DocumentID) == "" {
			return "missing document id"
		}
	}
	return ""
}

// HandleMessage dispatches a parsed message to the reconciler.
func HandleMessage(ctx context.Context, r Reconciler, msg queue.Message) error {
	if r == nil {
		return errors.New("reconciler not configured")
	}
	ctx = telemetry.WithRequestID(ctx, msg.RequestID)
	if err := r.Reconcile(ctx, msg); err != nil {
		return ErrProcess{Kind: msg.Kind, DocumentID: msg.DocumentID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}
