// Package interpreter turns wire workflows back into executable ones.
// It resolves each invocation descriptor against a driver library,
// clones the matching command template so registered commands stay
// pristine, and hands the bound sequence to the workflow runner.
package interpreter

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labforge/go-conductor/pkg/command"
	"github.com/labforge/go-conductor/pkg/library"
	"github.com/labforge/go-conductor/pkg/workflow"
)

// Options configures an interpreter. Library is required; a nil
// Logger falls back to a no-op.
type Options struct {
	Library *library.DriverLibrary
	Logger  *zap.SugaredLogger
}

// Interpreter binds wire workflows to the executable commands of one
// driver library.
type Interpreter struct {
	lib *library.DriverLibrary
	log *zap.SugaredLogger
}

// New builds an interpreter over the given library.
func New(opts Options) (*Interpreter, error) {
	if opts.Library == nil {
		return nil, fmt.Errorf("interpreter requires a driver library")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Interpreter{lib: opts.Library, log: log}, nil
}

// AsRunWorkflow normalizes the accepted workflow inputs to the wire
// form. A wire workflow passes through; a bare command slice or a
// single command is wrapped into a workflow with the given name.
func AsRunWorkflow(v any, name string) (*workflow.RunWorkflow, error) {
	switch w := v.(type) {
	case *workflow.RunWorkflow:
		return w, nil
	case []*command.RunCommand:
		run := workflow.NewRunWorkflow(name)
		run.Commands = append(run.Commands, w...)
		return run, nil
	case *command.RunCommand:
		run := workflow.NewRunWorkflow(name)
		run.Append(w)
		return run, nil
	default:
		return nil, fmt.Errorf("cannot interpret %T as a workflow", v)
	}
}

// InterpretWorkflow resolves every step of a wire workflow to a fresh
// clone of its library template and transplants the step's values onto
// it. Resolution is by UUID when the descriptor carries one, by
// microservice and command name otherwise.
func (it *Interpreter) InterpretWorkflow(run *workflow.RunWorkflow) (*workflow.DriverWorkflow, error) {
	driver := workflow.NewDriverWorkflow(run.Name)
	driver.SetLogger(it.log)

	for i, rc := range run.Commands {
		tmpl, err := it.resolve(rc)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, rc.Name, err)
		}
		bound := tmpl.Clone()
		if err := bound.ApplyRunCommand(rc); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, rc.Name, err)
		}
		driver.Append(bound)
	}
	it.log.Debugw("interpreted workflow", "workflow", run.Name, "steps", run.Len())
	return driver, nil
}

// InterpretAndRun interprets a wire workflow and executes it in one
// go, feeding each step's save-var mapping and literal kwargs to the
// runner.
func (it *Interpreter) InterpretAndRun(run *workflow.RunWorkflow) ([]map[string]any, error) {
	driver, err := it.InterpretWorkflow(run)
	if err != nil {
		return nil, err
	}

	saveVarList := make([]map[string]string, run.Len())
	kwargsList := make([]map[string]any, run.Len())
	for i, rc := range run.Commands {
		saveVarList[i] = rc.SaveVars
		kwargsList[i] = rc.Kwargs()
	}
	return driver.Exec(saveVarList, kwargsList)
}

// resolve finds the library template for one descriptor. A UUID names
// the owning microservice; the command is then looked up by name
// within it. Without a UUID resolution falls back to the
// microservice/name pair.
func (it *Interpreter) resolve(rc *command.RunCommand) (*command.DriverCommand, error) {
	if rc.UUID != uuid.Nil {
		ms, err := it.lib.GetByUUID(rc.UUID)
		if err != nil {
			return nil, err
		}
		return ms.Get(rc.Name)
	}
	return it.lib.GetCommand(rc.Microservice, rc.Name)
}
