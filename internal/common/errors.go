package common

import "errors"

var (

	// lookup errors
	ErrNotFound = errors.New("not found")
	ErrGone     = errors.New("link expired or download limit reached")
	ErrConflict = errors.New("already exists")

	// access errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")

	// policy rejections
	ErrPathTraversal         = errors.New("path traversal attempt")
	ErrFileTooLarge          = errors.New("file too large")
	ErrMimeNotAllowed        = errors.New("mime type not allowed")
	ErrDangerousExtension    = errors.New("file type not allowed for security reasons")
	ErrDirectoryNotShareable = errors.New("cannot share directories, only files")
	ErrMaxDepth              = errors.New("maximum directory depth exceeded")
	ErrIncompleteUpload      = errors.New("chunked upload is incomplete")
	ErrInvalidInput          = errors.New("invalid input")
	ErrRangeNotSatisfiable   = errors.New("range not satisfiable")

	// ErrInternal is what clients see in place of any unexpected failure.
	ErrInternal = errors.New("internal server error")
)
