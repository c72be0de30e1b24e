package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: "  notes.txt ", want: "notes.txt"},
		{in: "a/b\\c.txt", want: "a_b_c.txt"},
		{in: "../etc/passwd", want: ".._etc_passwd"},
		{in: "report..final.txt", want: "report..final.txt"},
		{in: "..", wantErr: true},
		{in: " . ", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
