package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type flakyGenerator struct {
	errs  []error
	calls int
}

func (f *flakyGenerator) GenerateAnswer(ctx context.Context, documentContext string, question string) (string, error) {
	f.calls++
	if len(f.errs) >= f.calls && f.errs[f.calls-1] != nil {
		return "", f.errs[f.calls-1]
	}
	return "answer", nil
}

func TestWithRetryRetriesTransientOnce(t *testing.T) {
	base := &flakyGenerator{errs: []error{errors.New("read: connection reset by peer")}}
	g := retryingGenerator{base: base}

	got, err := g.GenerateAnswer(context.Background(), "ctx", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "answer" || base.calls != 2 {
		t.Fatalf("expected answer after 2 calls, got %q after %d", got, base.calls)
	}
}

func TestWithRetrySkipsPermanentErrors(t *testing.T) {
	base := &flakyGenerator{errs: []error{fmt.Errorf("gemini: %w", ErrEmptyAnswer)}}
	g := retryingGenerator{base: base}

	if _, err := g.GenerateAnswer(context.Background(), "ctx", "q"); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected a single call, got %d", base.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
		{ErrNotConfigured, false},
		{errors.New("error, status code: 503, message: overloaded"), true},
		{errors.New("invalid api key"), false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Fatalf("ShouldRetry(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestWithRetryNil(t *testing.T) {
	if WithRetry(nil) != nil {
		t.Fatalf("expected nil generator")
	}
}
