package errorutil

import "errors"

// ErrMalformedInput is a base error type to use for trace input that does
// not follow the report conventions.
var ErrMalformedInput = errors.New("malformed trace input")

// ErrInvalidConfig represents configuration values that fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")
