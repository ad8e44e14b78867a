package service

import "errors"

var (
	// ErrNoteNotFound is the non-exceptional "absent" outcome of a fetch.
	ErrNoteNotFound = errors.New("note not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
)
