package types

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidFile   = errors.New("invalid file")
	ErrFileTooLarge  = errors.New("file too large")
	ErrEmptyDocument = errors.New("document contains no extractable text")
	ErrUnauthorized  = errors.New("invalid authentication credentials")
	ErrInvalidPath   = errors.New("invalid path")
	ErrEmptyQuestion = errors.New("question must not be empty")
)
