package services

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUpstream        = errors.New("upstream service failure")
	ErrEmailTaken      = errors.New("email already registered")
	ErrForbidden       = errors.New("forbidden")
	ErrTooLarge        = errors.New("object too large")
	ErrUnsupportedType = errors.New("unsupported content type")
)
