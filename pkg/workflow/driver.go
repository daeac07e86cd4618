package workflow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/labforge/go-conductor/pkg/command"
)

// DriverWorkflow is the executable tier: bound commands sharing one
// variable space. Steps run strictly in order; a step's saved results
// become visible to every later step through the globals map.
type DriverWorkflow struct {
	Name     string
	Commands []*command.DriverCommand

	globals map[string]any
	log     *zap.SugaredLogger
}

// NewDriverWorkflow returns an empty executable workflow with a fresh
// variable space.
func NewDriverWorkflow(name string) *DriverWorkflow {
	return &DriverWorkflow{
		Name:    name,
		globals: make(map[string]any),
		log:     zap.NewNop().Sugar(),
	}
}

// SetLogger replaces the workflow's logger. A nil logger restores the
// no-op default.
func (w *DriverWorkflow) SetLogger(log *zap.SugaredLogger) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w.log = log
}

// Append adds a bound command to the end of the workflow.
func (w *DriverWorkflow) Append(cmd *command.DriverCommand) {
	w.Commands = append(w.Commands, cmd)
}

// Len returns the number of steps.
func (w *DriverWorkflow) Len() int { return len(w.Commands) }

// Globals returns the shared variable space. The returned map is the
// live one; callers may seed variables before execution.
func (w *DriverWorkflow) Globals() map[string]any {
	return w.globals
}

// ClearGlobals resets the shared variable space.
func (w *DriverWorkflow) ClearGlobals() {
	w.globals = make(map[string]any)
}

// Exec runs every step in order. Each element of saveVarList and
// kwargsList configures the step at the same position; nil elements
// leave a step at its bound values. Both lists must either be nil or
// have one element per step, checked before anything executes.
//
// Execution is not transactional across steps: when a step fails, the
// results of the steps already completed are returned alongside the
// error, and globals keep whatever the completed steps saved.
func (w *DriverWorkflow) Exec(saveVarList []map[string]string, kwargsList []map[string]any) ([]map[string]any, error) {
	n := len(w.Commands)
	if saveVarList != nil && len(saveVarList) != n {
		return nil, fmt.Errorf("%w: %d save-var maps for %d steps", ErrLengthMismatch, len(saveVarList), n)
	}
	if kwargsList != nil && len(kwargsList) != n {
		return nil, fmt.Errorf("%w: %d kwargs maps for %d steps", ErrLengthMismatch, len(kwargsList), n)
	}

	results := make([]map[string]any, 0, n)
	for i, cmd := range w.Commands {
		var saveVars map[string]string
		var kwargs map[string]any
		if saveVarList != nil {
			saveVars = saveVarList[i]
		}
		if kwargsList != nil {
			kwargs = kwargsList[i]
		}

		w.log.Debugw("executing step",
			"workflow", w.Name,
			"step", i,
			"command", cmd.Name,
			"microservice", cmd.Microservice,
		)
		result, err := cmd.Invoke(w.globals, saveVars, kwargs)
		if err != nil {
			w.log.Errorw("step failed",
				"workflow", w.Name,
				"step", i,
				"command", cmd.Name,
				"error", err,
			)
			return results, fmt.Errorf("step %d (%s): %w", i, cmd.Name, err)
		}
		results = append(results, result)
	}
	w.log.Infow("workflow complete", "workflow", w.Name, "steps", n)
	return results, nil
}

// ToInfoWorkflow projects the executable workflow to its catalog form.
func (w *DriverWorkflow) ToInfoWorkflow() *InfoWorkflow {
	info := NewInfoWorkflow(w.Name)
	for _, cmd := range w.Commands {
		info.Append(cmd.ToInfo())
	}
	return info
}
