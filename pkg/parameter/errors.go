package parameter

import "errors"

// Sentinel errors for the parameter layer. Callers classify failures
// with errors.Is; the wrapped message carries the parameter name and
// offending value.
var (
	// ErrSpecification indicates an invalid parameter model at authoring
	// time. A model that fails normalization must not be used as a
	// factory.
	ErrSpecification = errors.New("invalid parameter specification")

	// ErrTypeMismatch indicates a value that could not be coerced to the
	// model's declared data type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrOutOfRange indicates a value outside the model's declared
	// upper/lower limits.
	ErrOutOfRange = errors.New("value out of range")

	// ErrNotAllowed indicates a value absent from the model's allowed
	// value set.
	ErrNotAllowed = errors.New("value not allowed")
)
