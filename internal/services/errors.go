package services

import "errors"

// Typed failures the wallet core and purchase flows report to callers.
// Handlers map these onto HTTP status codes; nothing in the services layer
// retries on them.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUnauthorized        = errors.New("not authorized")
)
