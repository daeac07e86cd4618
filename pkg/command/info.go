package command

import (
	"fmt"

	"github.com/labforge/go-conductor/pkg/parameter"
)

// InfoCommand is the catalog form of a command: parameter
// specifications and return metadata, but no binding and no concrete
// values. It is what a planner sees; it is never executed directly.
type InfoCommand struct {
	Command
	Parameters      map[string]*parameter.Model `json:"parameters" yaml:"parameters"`
	HasReturn       bool                        `json:"has_return" yaml:"has_return"`
	ReturnSignature map[string]string           `json:"return_signature,omitempty" yaml:"return_signature,omitempty"`
}

// Normalize validates the command's parameter models and enforces the
// return-signature invariant: a command without a return has no
// signature.
func (c *InfoCommand) Normalize() error {
	for _, model := range c.Parameters {
		if err := model.Normalize(); err != nil {
			return err
		}
	}
	if !c.HasReturn {
		c.ReturnSignature = nil
	}
	return nil
}

// ToRunCommand builds a wire-level invocation descriptor from the
// catalog entry. Each declared parameter becomes a value container
// carrying the specification's default; names listed in varNames are
// marked indirected through the given workflow variable, and names
// listed in values receive that literal value subject to the
// container's own validation.
//
// Every key of varNames and values must be a declared parameter name,
// and every key of saveVars must appear in the return signature when
// one is declared.
func (c *InfoCommand) ToRunCommand(varNames map[string]string, saveVars map[string]string, values map[string]any) (*RunCommand, error) {
	if err := c.Normalize(); err != nil {
		return nil, err
	}

	if c.ReturnSignature != nil {
		for key := range saveVars {
			if _, ok := c.ReturnSignature[key]; !ok {
				return nil, fmt.Errorf("%w: %q is not a return key of command %q",
					ErrUnknownReturnKey, key, c.Name)
			}
		}
	}
	for key := range varNames {
		if _, ok := c.Parameters[key]; !ok {
			return nil, fmt.Errorf("%w: variable name key %q is not a parameter of command %q",
				ErrUnknownParameter, key, c.Name)
		}
	}
	for key := range values {
		if _, ok := c.Parameters[key]; !ok {
			return nil, fmt.Errorf("%w: value key %q is not a parameter of command %q",
				ErrUnknownParameter, key, c.Name)
		}
	}

	params := make(map[string]*parameter.Parameter, len(c.Parameters))
	for name, model := range c.Parameters {
		p, err := model.Build()
		if err != nil {
			return nil, err
		}
		if varName, ok := varNames[name]; ok {
			p.SetVar(varName)
		}
		if value, ok := values[name]; ok {
			if err := p.Set(value); err != nil {
				return nil, err
			}
		}
		params[name] = p
	}

	sv := make(map[string]string, len(saveVars))
	for k, v := range saveVars {
		sv[k] = v
	}

	return &RunCommand{
		Command:    c.Command,
		Parameters: params,
		SaveVars:   sv,
	}, nil
}
