package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"docqa-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingGenerator struct {
	base  Generator
	delay time.Duration
}

// WithRetry wraps g so a transient provider failure is retried once after a short delay.
func WithRetry(g Generator) Generator {
	if g == nil {
		return nil
	}
	return retryingGenerator{base: g, delay: retryBaseDelay}
}

func (r retryingGenerator) GenerateAnswer(ctx context.Context, documentContext string, question string) (string, error) {
	answer, err := r.base.GenerateAnswer(ctx, documentContext, question)
	if err == nil || !ShouldRetry(err) {
		return answer, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"attempt":    1,
		"request_id": telemetry.RequestIDFromContext(ctx),
		"error":      err,
	})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return r.base.GenerateAnswer(ctx, documentContext, question)
}

// ShouldRetry reports whether err looks like a transient provider or network failure.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrEmptyAnswer) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "unavailable") {
		return true
	}
	for _, hint := range []string{
		"connection reset",
		"connection refused",
		"broken pipe",
		"tls handshake timeout",
		"unexpected eof",
	} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
