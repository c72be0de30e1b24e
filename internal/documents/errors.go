package documents

import "errors"

var (
	// ErrInvalidInput indicates the caller supplied an unusable upload or id.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers both missing documents and documents owned by someone else.
	ErrNotFound = errors.New("document not found")
	// ErrStorage indicates the blob store rejected an operation.
	ErrStorage = errors.New("blob storage failure")
	// ErrPersistence indicates the metadata store rejected an operation.
	ErrPersistence = errors.New("metadata persistence failure")
	// ErrProcessing indicates text could not be extracted from the upload.
	ErrProcessing = errors.New("document processing failed")
)
