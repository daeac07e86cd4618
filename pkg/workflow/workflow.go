// Package workflow models ordered sequences of commands in the same
// three tiers as the commands themselves: catalog sequences for
// planning, wire sequences for transport, and driver sequences that
// actually execute with a shared variable space.
package workflow

import (
	"errors"
	"fmt"

	"github.com/labforge/go-conductor/pkg/command"
)

// ErrLengthMismatch reports per-step argument lists whose length does
// not match the number of steps.
var ErrLengthMismatch = errors.New("argument list length does not match step count")

// InfoWorkflow is an ordered sequence of catalog commands. It is a
// plan, not an executable.
type InfoWorkflow struct {
	Name     string                 `json:"name" yaml:"name"`
	Commands []*command.InfoCommand `json:"commands" yaml:"commands"`
}

// NewInfoWorkflow returns an empty plan.
func NewInfoWorkflow(name string) *InfoWorkflow {
	return &InfoWorkflow{Name: name}
}

// Append adds a catalog command to the end of the plan.
func (w *InfoWorkflow) Append(cmd *command.InfoCommand) {
	w.Commands = append(w.Commands, cmd)
}

// Len returns the number of steps.
func (w *InfoWorkflow) Len() int { return len(w.Commands) }

// ToRunWorkflow converts the plan to its wire form. Each element of
// varNameList, saveVarList and valueList configures the step at the
// same position; a nil element leaves that step at its defaults. All
// three lists must either be nil or have exactly one element per step.
// The converted workflow is named after the plan with a "_run" suffix.
func (w *InfoWorkflow) ToRunWorkflow(varNameList []map[string]string, saveVarList []map[string]string, valueList []map[string]any) (*RunWorkflow, error) {
	n := len(w.Commands)
	if varNameList != nil && len(varNameList) != n {
		return nil, fmt.Errorf("%w: %d variable maps for %d steps", ErrLengthMismatch, len(varNameList), n)
	}
	if saveVarList != nil && len(saveVarList) != n {
		return nil, fmt.Errorf("%w: %d save-var maps for %d steps", ErrLengthMismatch, len(saveVarList), n)
	}
	if valueList != nil && len(valueList) != n {
		return nil, fmt.Errorf("%w: %d value maps for %d steps", ErrLengthMismatch, len(valueList), n)
	}

	run := &RunWorkflow{Name: w.Name + "_run"}
	for i, cmd := range w.Commands {
		var varNames, saveVars map[string]string
		var values map[string]any
		if varNameList != nil {
			varNames = varNameList[i]
		}
		if saveVarList != nil {
			saveVars = saveVarList[i]
		}
		if valueList != nil {
			values = valueList[i]
		}
		rc, err := cmd.ToRunCommand(varNames, saveVars, values)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, cmd.Name, err)
		}
		run.Commands = append(run.Commands, rc)
	}
	return run, nil
}

// RunWorkflow is the wire form of a workflow: the ordered invocation
// descriptors, ready to be interpreted against an executable library.
type RunWorkflow struct {
	Name     string                `json:"name" yaml:"name"`
	Commands []*command.RunCommand `json:"commands" yaml:"commands"`
}

// NewRunWorkflow returns an empty wire workflow.
func NewRunWorkflow(name string) *RunWorkflow {
	return &RunWorkflow{Name: name}
}

// Append adds an invocation descriptor to the end of the workflow.
func (w *RunWorkflow) Append(cmd *command.RunCommand) {
	w.Commands = append(w.Commands, cmd)
}

// Len returns the number of steps.
func (w *RunWorkflow) Len() int { return len(w.Commands) }
