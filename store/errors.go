package store

import "errors"

var (
	// ErrTemplateNotFound indicates no live template is stored under the job id.
	ErrTemplateNotFound = errors.New("store: template not found")

	// ErrDuplicateTemplate indicates a template with this job id already exists.
	ErrDuplicateTemplate = errors.New("store: duplicate template")

	// ErrInvalidTemplate indicates a template without a job id or blob.
	ErrInvalidTemplate = errors.New("store: invalid template")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")
)
