package errors

import "errors"

var (
	ErrCodeNotFound = errors.New("verification code not found")

	ErrSessionNotFound = errors.New("session not found")
)
