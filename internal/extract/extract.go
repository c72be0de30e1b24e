// Package extract turns uploaded document bytes into plain text split into
// elements (pages, paragraphs or sheet rows).
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned for content types no extractor handles.
var ErrUnsupported = errors.New("unsupported mime type")

// Result is the extracted text of a document. Text is the non-empty elements
// joined by a blank line.
type Result struct {
	Text     string
	Elements int
}

// Extractor extracts text using the built-in format handlers.
type Extractor struct{}

// New returns an Extractor.
func New() Extractor {
	return Extractor{}
}

// Extract implements the extraction capability used by ingestion.
func (Extractor) Extract(ctx context.Context, data []byte, contentType string, fileName string) (Result, error) {
	return ExtractFromBytes(ctx, data, contentType, fileName)
}

// ExtractFromBytes extracts text from an in-memory payload.
func ExtractFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, errors.New("empty payload")
	}

	normalized := normalizeMimeType(mimeType, fileName, data)
	var (
		elements []string
		err      error
	)
	switch {
	case normalized == mimePDF:
		elements, err = extractPDF(data)
	case normalized == mimeDOCX:
		elements, err = extractDOCX(data)
	case normalized == mimeXLSX:
		elements, err = extractXLSX(data)
	case normalized == mimeXLS:
		elements, err = extractXLS(data)
	case isTextual(normalized):
		elements, err = extractText(data)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupported, normalized)
	}
	if err != nil {
		return Result{}, fmt.Errorf("extract %s: %w", normalized, err)
	}
	return newResult(elements), nil
}

func newResult(elements []string) Result {
	kept := make([]string, 0, len(elements))
	for _, el := range elements {
		el = sanitizeText(el)
		if strings.TrimSpace(el) == "" {
			continue
		}
		kept = append(kept, el)
	}
	return Result{Text: strings.Join(kept, "\n\n"), Elements: len(kept)}
}

// sanitizeText drops bytes Postgres text columns reject and repairs invalid UTF-8.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
