package s3

import (
	"context"
	"testing"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user-1/abc-report.pdf", want: "user-1/abc-report.pdf"},
		{name: "simple prefix", prefix: "documents", key: "user-1/abc-report.pdf", want: "documents/user-1/abc-report.pdf"},
		{name: "prefix trailing slash", prefix: "documents/", key: "user-1/abc-report.pdf", want: "documents/user-1/abc-report.pdf"},
		{name: "prefix and key slashes", prefix: "/documents/", key: "/user-1/abc-report.pdf", want: "documents/user-1/abc-report.pdf"},
		{name: "empty key", prefix: "documents", key: "", want: "documents"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Options{Region: "us-east-1"}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
