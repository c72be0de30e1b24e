package util

import (
	"errors"
	"strings"
)

// SanitizeFileName replaces path separators and rejects names that are empty or
// only "." or "..".
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" || s == "." || s == ".." {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
