package service

import "errors"

var (
	// ErrUnsupportedFileType means the uploaded file is not .txt or .md.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptyDocument means the uploaded file produced no indexable text.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrDuplicateDocument means a document with the same filename is
	// already indexed.
	ErrDuplicateDocument = errors.New("document already indexed")

	// ErrEmptyQuestion means the question was blank.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrUnknownEngine means the requested engine name is not configured.
	ErrUnknownEngine = errors.New("unknown answer engine")
)
