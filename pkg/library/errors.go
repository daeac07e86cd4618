package library

import "errors"

var (
	// ErrUnknownMicroservice reports a lookup for a microservice the
	// library does not hold.
	ErrUnknownMicroservice = errors.New("unknown microservice")

	// ErrUnknownCommand reports a lookup for a command a microservice
	// does not hold.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNameMismatch reports an entry whose own identity disagrees
	// with the name it is being registered under.
	ErrNameMismatch = errors.New("name mismatch")
)
