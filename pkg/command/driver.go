package command

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/labforge/go-conductor/pkg/parameter"
)

// DriverCommand is the locally executable form of a command: the
// declared parameter models plus a bound handler. It owns a working
// set of parameter value containers distinct from the declared
// models; invocations mutate the working set, never the models.
//
// A registered DriverCommand acts as a template. The interpreter
// clones it before binding per-invocation values, so concurrent
// workflows never share working parameter state. Invoking the same
// instance from multiple goroutines is not safe.
type DriverCommand struct {
	Command
	Parameters      map[string]*parameter.Model
	HasReturn       bool
	ReturnSignature map[string]string

	// Module and Function name the registered binding when the handler
	// was resolved through the handler registry rather than passed
	// directly.
	Module   string
	Function string

	fn     Handler
	args   []string
	params map[string]*parameter.Parameter
}

// DriverConfig is the registration input for a driver command. Either
// Handler (with Args naming the arguments it consumes) or a
// Module/Function pair referencing the handler registry must be
// supplied.
type DriverConfig struct {
	Name            string
	Microservice    string
	UUID            uuid.UUID
	Description     string
	Parameters      map[string]*parameter.Model
	Handler         Handler
	Args            []string
	Module          string
	Function        string
	HasReturn       bool
	ReturnSignature map[string]string
}

// NewDriver builds and validates a driver command: the handler is
// resolved (directly or through the registry), every bound argument
// name is checked against the declared parameters, the return
// signature is normalized, and the working parameter set is built from
// the models with their defaults applied.
func NewDriver(cfg DriverConfig) (*DriverCommand, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("driver command name is required")
	}

	d := &DriverCommand{
		Command: Command{
			Name:         cfg.Name,
			Microservice: cfg.Microservice,
			UUID:         cfg.UUID,
			Description:  cfg.Description,
		},
		Parameters:      cfg.Parameters,
		HasReturn:       cfg.HasReturn,
		ReturnSignature: cfg.ReturnSignature,
		Module:          cfg.Module,
		Function:        cfg.Function,
	}
	if d.Parameters == nil {
		d.Parameters = make(map[string]*parameter.Model)
	}

	// Resolve the callable: a direct handler wins, otherwise the
	// module/function pair is looked up in the handler registry.
	switch {
	case cfg.Handler != nil:
		d.fn = cfg.Handler
		d.args = append([]string(nil), cfg.Args...)
	case cfg.Module != "" && cfg.Function != "":
		b, ok := LookupHandler(cfg.Module, cfg.Function)
		if !ok {
			return nil, fmt.Errorf("%w: no handler registered for %s.%s",
				ErrNotBound, cfg.Module, cfg.Function)
		}
		d.fn = b.Fn
		d.args = append([]string(nil), b.Args...)
	default:
		return nil, fmt.Errorf("%w: command %q has neither a handler nor a module/function pair",
			ErrNotBound, cfg.Name)
	}

	// Every formal argument of the binding must be a declared parameter.
	for _, arg := range d.args {
		if _, ok := d.Parameters[arg]; !ok {
			return nil, fmt.Errorf("%w: bound argument %q of command %q is not a declared parameter",
				ErrNotBound, arg, cfg.Name)
		}
	}

	if !d.HasReturn {
		d.ReturnSignature = nil
	}

	params := make(map[string]*parameter.Parameter, len(d.Parameters))
	for name, model := range d.Parameters {
		p, err := model.Build()
		if err != nil {
			return nil, err
		}
		params[name] = p
	}
	d.params = params

	return d, nil
}

// Param returns the working value container for a declared parameter.
func (d *DriverCommand) Param(name string) (*parameter.Parameter, bool) {
	p, ok := d.params[name]
	return p, ok
}

// Invoke runs the bound handler. Steps, in order:
//
//  1. the handler must be resolved;
//  2. every kwargs key must be a declared parameter, checked before
//     any state is mutated;
//  3. kwargs are applied to the working parameters atomically — on the
//     first validation failure every parameter is restored to its
//     pre-call value and the original error is returned;
//  4. indirected parameters whose variable exists in globals are
//     resolved from it, under the same all-or-nothing discipline;
//  5. the handler is called with the resolved values;
//  6. when the command has a return, each saveVars pair copies
//     result[resultKey] into globals[globalVarName] and the result is
//     returned. A command without a return discards the handler's
//     result and yields nil.
func (d *DriverCommand) Invoke(globals map[string]any, saveVars map[string]string, kwargs map[string]any) (map[string]any, error) {
	if d.fn == nil {
		return nil, fmt.Errorf("%w: command %q has no resolved handler", ErrNotBound, d.Name)
	}
	if globals == nil {
		globals = make(map[string]any)
	}

	for key := range kwargs {
		if _, ok := d.params[key]; !ok {
			return nil, fmt.Errorf("%w: %q is not a parameter of command %q",
				ErrUnknownArgument, key, d.Name)
		}
	}

	// Snapshot current values so any failure below restores the
	// pre-call state in full.
	snapshot := make(map[string]any, len(d.params))
	for name, p := range d.params {
		snapshot[name] = p.Value()
	}
	restore := func() {
		for name, value := range snapshot {
			// Restoring a previously held value cannot fail validation.
			_ = d.params[name].Set(value)
		}
	}

	for key, value := range kwargs {
		if err := d.params[key].Set(value); err != nil {
			restore()
			return nil, err
		}
	}

	for name, p := range d.params {
		if !p.FromVar {
			continue
		}
		value, ok := globals[p.VarName]
		if !ok {
			continue
		}
		if err := d.params[name].Set(value); err != nil {
			restore()
			return nil, err
		}
	}

	args := make(map[string]any, len(d.params))
	for name, p := range d.params {
		args[name] = p.Value()
	}

	result, err := d.fn(args)
	if err != nil {
		return nil, err
	}

	if !d.HasReturn {
		return nil, nil
	}
	for resultKey, globalVar := range saveVars {
		value, ok := result[resultKey]
		if !ok {
			return nil, fmt.Errorf("%w: command %q result has no key %q",
				ErrUnknownReturnKey, d.Name, resultKey)
		}
		globals[globalVar] = value
	}
	return result, nil
}

// ApplyRunCommand transplants a run command's concrete values and
// indirection flags onto the working parameter set. Literal values go
// through the working container's own validation; indirection marks
// both the working container and the declared model so a subsequent
// catalog projection reflects it.
func (d *DriverCommand) ApplyRunCommand(rc *RunCommand) error {
	for name, p := range rc.Parameters {
		target, ok := d.params[name]
		if !ok {
			return fmt.Errorf("%w: %q is not a parameter of command %q",
				ErrUnknownParameter, name, d.Name)
		}
		if p.FromVar {
			target.SetVar(p.VarName)
			if model, ok := d.Parameters[name]; ok {
				model.FromVar = true
				model.VarName = p.VarName
			}
			continue
		}
		if p.Value() == nil {
			continue
		}
		if err := target.Set(p.Value()); err != nil {
			return err
		}
	}
	return nil
}

// ToInfo projects the driver command to its catalog form, dropping the
// binding and runtime state.
func (d *DriverCommand) ToInfo() *InfoCommand {
	params := make(map[string]*parameter.Model, len(d.Parameters))
	for name, model := range d.Parameters {
		params[name] = model.Clone()
	}
	return &InfoCommand{
		Command:         d.Command,
		Parameters:      params,
		HasReturn:       d.HasReturn,
		ReturnSignature: copyStringMap(d.ReturnSignature),
	}
}

// Clone returns an independent copy of the driver command, including
// its working parameter state. The interpreter clones registered
// templates before binding invocation-specific values.
func (d *DriverCommand) Clone() *DriverCommand {
	dup := &DriverCommand{
		Command:         d.Command,
		HasReturn:       d.HasReturn,
		ReturnSignature: copyStringMap(d.ReturnSignature),
		Module:          d.Module,
		Function:        d.Function,
		fn:              d.fn,
		args:            append([]string(nil), d.args...),
	}
	dup.Parameters = make(map[string]*parameter.Model, len(d.Parameters))
	for name, model := range d.Parameters {
		dup.Parameters[name] = model.Clone()
	}
	dup.params = make(map[string]*parameter.Parameter, len(d.params))
	for name, p := range d.params {
		dup.params[name] = p.Clone()
	}
	return dup
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
