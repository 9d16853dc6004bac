package errors

import "errors"

var (
	ErrNotFound = errors.New("project inquiry not found")
)
