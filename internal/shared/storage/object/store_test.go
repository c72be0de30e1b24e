package object

import "testing"

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		owner string
		want  string
	}{
		{name: "plain owner", owner: "user-1", want: "user-1/abc-report.pdf"},
		{name: "owner with slash", owner: "org/user", want: "org_user/abc-report.pdf"},
		{name: "owner traversal", owner: "../etc", want: "__etc/abc-report.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Key(tt.owner, "abc", "report.pdf"); got != tt.want {
				t.Fatalf("Key(%q) = %q, want %q", tt.owner, got, tt.want)
			}
		})
	}
}
