// Package apperr defines the error kinds the HTTP layer knows how to map
// to status codes. Services wrap these with %w so handlers can classify
// with errors.Is without seeing store-level detail.
package apperr

import "errors"

var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoutineNotFound    = errors.New("routine not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrDatabase           = errors.New("database error")
)
