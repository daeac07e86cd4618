// Package command implements the three tiers of the command model:
// InfoCommand (catalog descriptor), RunCommand (wire-level invocation
// descriptor) and DriverCommand (locally executable binding). All
// three are views of the same operation at increasing binding
// specificity and share the Command base.
package command

import "github.com/google/uuid"

// Command carries the identity every tier shares: the operation name,
// the owning microservice's name, and the microservice UUID the
// operation is addressed through.
type Command struct {
	Name         string    `json:"name" yaml:"name"`
	Microservice string    `json:"microservice" yaml:"microservice"`
	UUID         uuid.UUID `json:"uuid" yaml:"uuid"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// Handler is the callable bound to a driver command. Arguments arrive
// as a map of resolved parameter values; results are returned as a map
// keyed by the command's return signature.
type Handler func(args map[string]any) (map[string]any, error)
