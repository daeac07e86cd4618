package command

import "errors"

var (
	// ErrUnknownParameter indicates a reference to a parameter name the
	// command does not declare.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrUnknownReturnKey indicates a save-var key absent from the
	// command's declared return signature, or a result key the callable
	// did not produce.
	ErrUnknownReturnKey = errors.New("unknown return key")

	// ErrUnknownArgument indicates an invocation argument that does not
	// correspond to a declared parameter. Raised before any parameter
	// state is touched.
	ErrUnknownArgument = errors.New("unknown argument")

	// ErrNotBound indicates a driver command whose callable could not be
	// resolved or whose binding disagrees with the declared parameters.
	// This is a registration bug, not a runtime condition.
	ErrNotBound = errors.New("command not bound")
)
