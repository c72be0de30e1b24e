package queries

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("document not found")
	ErrGeneration   = errors.New("answer generation failed")
	ErrPersistence  = errors.New("query persistence failure")
)
