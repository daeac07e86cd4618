package command

import "github.com/labforge/go-conductor/pkg/parameter"

// RunCommand is the wire-level invocation descriptor: concrete or
// indirected parameter values plus the mapping of result keys to
// workflow globals. It is the serializable unit expected to cross a
// process boundary, produced by a planner or by converting an
// InfoCommand.
type RunCommand struct {
	Command
	Parameters map[string]*parameter.Parameter `json:"parameters" yaml:"parameters"`
	SaveVars   map[string]string               `json:"save_vars,omitempty" yaml:"save_vars,omitempty"`
}

// Kwargs returns the literal argument values of the command: every
// parameter not flagged as indirected, keyed by name. Indirected
// parameters are resolved from workflow globals at invocation time
// instead.
func (c *RunCommand) Kwargs() map[string]any {
	kwargs := make(map[string]any)
	for name, p := range c.Parameters {
		if !p.FromVar {
			kwargs[name] = p.Value()
		}
	}
	return kwargs
}
