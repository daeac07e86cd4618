package interpreter

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/labforge/go-conductor/pkg/command"
	"github.com/labforge/go-conductor/pkg/library"
	"github.com/labforge/go-conductor/pkg/parameter"
	"github.com/labforge/go-conductor/pkg/workflow"
)

func benchLibrary(t *testing.T) *library.DriverLibrary {
	t.Helper()
	double, err := command.NewDriver(command.DriverConfig{
		Name:         "double",
		Microservice: "math",
		Parameters: map[string]*parameter.Model{
			"n": {Name: "n", DataType: parameter.TypeInt, Default: 1},
		},
		Handler: func(args map[string]any) (map[string]any, error) {
			return map[string]any{"n": args["n"].(int) * 2}, nil
		},
		Args:            []string{"n"},
		HasReturn:       true,
		ReturnSignature: map[string]string{"n": "int"},
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	ms := library.NewDriverMicroservice("math")
	if err := ms.Add(double); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lib := library.NewDriverLibrary("bench")
	lib.Add(ms)
	return lib
}

func newInterpreter(t *testing.T, lib *library.DriverLibrary) *Interpreter {
	t.Helper()
	it, err := New(Options{Library: lib})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return it
}

func TestNewRequiresLibrary(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for missing library")
	}
}

func TestInterpretAndRunRoundTrip(t *testing.T) {
	lib := benchLibrary(t)
	it := newInterpreter(t, lib)

	tmpl, err := lib.GetCommand("math", "double")
	if err != nil {
		t.Fatalf("GetCommand: %v", err)
	}
	info := workflow.NewInfoWorkflow("doubler")
	info.Append(tmpl.ToInfo())
	info.Append(tmpl.ToInfo())

	run, err := info.ToRunWorkflow(
		[]map[string]string{nil, {"n": "acc"}},
		[]map[string]string{{"n": "acc"}, {"n": "acc"}},
		[]map[string]any{{"n": 3}, nil},
	)
	if err != nil {
		t.Fatalf("ToRunWorkflow: %v", err)
	}

	results, err := it.InterpretAndRun(run)
	if err != nil {
		t.Fatalf("InterpretAndRun: %v", err)
	}
	if len(results) != 2 || results[0]["n"] != 6 || results[1]["n"] != 12 {
		t.Fatalf("results = %v, want 6 then 12", results)
	}
}

func TestInterpretDoesNotMutateTemplate(t *testing.T) {
	lib := benchLibrary(t)
	it := newInterpreter(t, lib)

	tmpl, err := lib.GetCommand("math", "double")
	if err != nil {
		t.Fatalf("GetCommand: %v", err)
	}
	rc, err := tmpl.ToInfo().ToRunCommand(nil, nil, map[string]any{"n": 40})
	if err != nil {
		t.Fatalf("ToRunCommand: %v", err)
	}

	run := workflow.NewRunWorkflow("once")
	run.Append(rc)
	if _, err := it.InterpretAndRun(run); err != nil {
		t.Fatalf("InterpretAndRun: %v", err)
	}

	if p, _ := tmpl.Param("n"); p.Value() != 1 {
		t.Fatalf("template value = %v, want untouched default 1", p.Value())
	}
}

func TestInterpretUnknownUUID(t *testing.T) {
	it := newInterpreter(t, benchLibrary(t))

	run := workflow.NewRunWorkflow("bad")
	run.Append(&command.RunCommand{
		Command: command.Command{Name: "ghost", Microservice: "math", UUID: uuid.New()},
	})

	_, err := it.InterpretWorkflow(run)
	if !errors.Is(err, library.ErrUnknownMicroservice) {
		t.Fatalf("got %v, want ErrUnknownMicroservice", err)
	}
}

func TestInterpretUUIDSelectsCommandByName(t *testing.T) {
	lib := benchLibrary(t)
	ms, err := lib.Get("math")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	triple, err := command.NewDriver(command.DriverConfig{
		Name:         "triple",
		Microservice: "math",
		Parameters: map[string]*parameter.Model{
			"n": {Name: "n", DataType: parameter.TypeInt, Default: 1},
		},
		Handler: func(args map[string]any) (map[string]any, error) {
			return map[string]any{"n": args["n"].(int) * 3}, nil
		},
		Args:            []string{"n"},
		HasReturn:       true,
		ReturnSignature: map[string]string{"n": "int"},
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if err := ms.Add(triple); err != nil {
		t.Fatalf("Add: %v", err)
	}
	it := newInterpreter(t, lib)

	// The UUID names the microservice, so it is the step name that
	// picks which of its commands runs.
	run := workflow.NewRunWorkflow("tripled")
	run.Append(&command.RunCommand{
		Command: command.Command{Name: "triple", UUID: ms.UUID},
	})
	results, err := it.InterpretAndRun(run)
	if err != nil {
		t.Fatalf("InterpretAndRun: %v", err)
	}
	if results[0]["n"] != 3 {
		t.Fatalf("results = %v, want default 1 tripled", results)
	}

	run = workflow.NewRunWorkflow("ghost")
	run.Append(&command.RunCommand{
		Command: command.Command{Name: "ghost", UUID: ms.UUID},
	})
	if _, err := it.InterpretWorkflow(run); !errors.Is(err, library.ErrUnknownCommand) {
		t.Fatalf("got %v, want ErrUnknownCommand", err)
	}
}

func TestInterpretResolvesByNameWithoutUUID(t *testing.T) {
	it := newInterpreter(t, benchLibrary(t))

	run := workflow.NewRunWorkflow("named")
	run.Append(&command.RunCommand{
		Command: command.Command{Name: "double", Microservice: "math"},
	})

	results, err := it.InterpretAndRun(run)
	if err != nil {
		t.Fatalf("InterpretAndRun: %v", err)
	}
	if results[0]["n"] != 2 {
		t.Fatalf("results = %v, want default 1 doubled", results)
	}
}

func TestInterpretUnknownMicroservice(t *testing.T) {
	it := newInterpreter(t, benchLibrary(t))

	run := workflow.NewRunWorkflow("bad")
	run.Append(&command.RunCommand{
		Command: command.Command{Name: "double", Microservice: "physics"},
	})

	_, err := it.InterpretWorkflow(run)
	if !errors.Is(err, library.ErrUnknownMicroservice) {
		t.Fatalf("got %v, want ErrUnknownMicroservice", err)
	}
}

func TestAsRunWorkflow(t *testing.T) {
	rc := &command.RunCommand{Command: command.Command{Name: "double", Microservice: "math"}}

	single, err := AsRunWorkflow(rc, "wrapped")
	if err != nil || single.Len() != 1 || single.Name != "wrapped" {
		t.Fatalf("single: %v %+v", err, single)
	}

	slice, err := AsRunWorkflow([]*command.RunCommand{rc, rc}, "pair")
	if err != nil || slice.Len() != 2 {
		t.Fatalf("slice: %v %+v", err, slice)
	}

	passthrough, err := AsRunWorkflow(slice, "ignored")
	if err != nil || passthrough != slice {
		t.Fatalf("passthrough: %v", err)
	}

	if _, err := AsRunWorkflow(42, "nope"); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
