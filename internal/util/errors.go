package util

import "errors"

var (
	ErrNotFound    = errors.New("resource not found")
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("concurrent modification")
	ErrPersistence = errors.New("persistence failure")

	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
