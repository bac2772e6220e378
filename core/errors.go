package core

import "errors"

var (
	// ErrNilResponse is returned when a handler returns a nil response.
	ErrNilResponse = errors.New("handler returned nil response")

	// ErrInvalidJSON is returned when the request body is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON body")

	// ErrUnsupportedContentType is returned when the request content type
	// does not match what the binder expects.
	ErrUnsupportedContentType = errors.New("unsupported content type")
)
