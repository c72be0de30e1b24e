package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"docqa-backend/internal/documents"
	"docqa-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeReconciler struct {
	err   error
	calls int
}

func (f *fakeReconciler) Reconcile(ctx context.Context, msg queue.Message) error {
	f.calls++
	return f.err
}

func sqsMessage(t *testing.T, id string, msg queue.Message) sqstypes.Message {
	t.Helper()
	body, err := queue.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return sqstypes.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String("r-" + id),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	r := &fakeReconciler{}
	msg := sqsMessage(t, "m1", queue.Message{Kind: queue.KindIndexMissing, DocumentID: "doc-1", RequestID: "req-1"})

	handleMessage(context.Background(), client, "queue", r, msg)

	if r.calls != 1 || len(client.deleted) != 1 {
		t.Fatalf("expected reconcile and delete, got calls=%d deleted=%d", r.calls, len(client.deleted))
	}
}

func TestWorkerKeepsMessageOnTransientFailure(t *testing.T) {
	client := &fakeSQS{}
	r := &fakeReconciler{err: errors.New("boom")}
	msg := sqsMessage(t, "m2", queue.Message{Kind: queue.KindOrphanBlob, StorageKey: "u/k"})

	handleMessage(context.Background(), client, "queue", r, msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDiscardsPermanentFailure(t *testing.T) {
	client := &fakeSQS{}
	r := &fakeReconciler{err: fmt.Errorf("%w: bad", documents.ErrInvalidInput)}
	msg := sqsMessage(t, "m3", queue.Message{Kind: queue.KindIndexStale, DocumentID: "doc-1"})

	handleMessage(context.Background(), client, "queue", r, msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	r := &fakeReconciler{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), client, "queue", r, msg)

	if len(client.deleted) != 1 || r.calls != 0 {
		t.Fatalf("expected delete without reconcile, got deleted=%d calls=%d", len(client.deleted), r.calls)
	}
}
