package wire

import (
	"testing"

	"github.com/google/uuid"

	"github.com/labforge/go-conductor/pkg/command"
	"github.com/labforge/go-conductor/pkg/parameter"
	"github.com/labforge/go-conductor/pkg/workflow"
)

func sampleRunWorkflow() *workflow.RunWorkflow {
	rc := &command.RunCommand{
		Command: command.Command{
			Name:         "set_temperature",
			Microservice: "microwave",
			UUID:         uuid.New(),
		},
		Parameters: map[string]*parameter.Parameter{
			"temperature": parameter.NewLiteral(80),
		},
		SaveVars: map[string]string{"status": "heater_status"},
	}
	indirect := &command.RunCommand{
		Command: command.Command{
			Name:         "check_status",
			Microservice: "microwave",
		},
		Parameters: map[string]*parameter.Parameter{
			"expected": {},
		},
	}
	indirect.Parameters["expected"].SetVar("heater_status")

	w := workflow.NewRunWorkflow("heat_sample")
	w.Append(rc)
	w.Append(indirect)
	return w
}

func TestWorkflowRoundTrip(t *testing.T) {
	original := sampleRunWorkflow()

	data, err := EncodeWorkflow(original)
	if err != nil {
		t.Fatalf("EncodeWorkflow: %v", err)
	}
	decoded, err := DecodeWorkflow(data)
	if err != nil {
		t.Fatalf("DecodeWorkflow: %v", err)
	}

	if decoded.Name != "heat_sample" || decoded.Len() != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
	first := decoded.Commands[0]
	if first.UUID != original.Commands[0].UUID {
		t.Fatal("uuid lost in round trip")
	}
	// JSON numbers come back as float64; driver-side validation
	// re-coerces them to the declared type.
	if got := first.Parameters["temperature"].Value(); got != float64(80) {
		t.Fatalf("temperature = %v (%T)", got, got)
	}
	if first.SaveVars["status"] != "heater_status" {
		t.Fatalf("save vars = %v", first.SaveVars)
	}

	second := decoded.Commands[1]
	p := second.Parameters["expected"]
	if !p.FromVar || p.VarName != "heater_status" {
		t.Fatalf("indirection lost: %+v", p)
	}
}

func TestDecodeRejectsMissingName(t *testing.T) {
	payload := []byte(`{"commands": []}`)
	if _, err := DecodeWorkflow(payload); err == nil {
		t.Fatal("expected schema violation for missing name")
	}
}

func TestDecodeRejectsIndirectionWithoutVarName(t *testing.T) {
	payload := []byte(`{
		"name": "bad",
		"commands": [{
			"name": "step",
			"microservice": "ms",
			"parameters": {"p": {"from_var": true}}
		}]
	}`)
	if _, err := DecodeWorkflow(payload); err == nil {
		t.Fatal("expected schema violation for from_var without var_name")
	}
}

func TestDecodeRejectsInvalidUUID(t *testing.T) {
	payload := []byte(`{
		"name": "bad",
		"commands": [{"name": "step", "microservice": "ms", "uuid": "not-a-uuid"}]
	}`)
	if _, err := DecodeWorkflow(payload); err == nil {
		t.Fatal("expected error for malformed uuid")
	}
}

func TestValidateAcceptsEncodedPayload(t *testing.T) {
	data, err := EncodeWorkflow(sampleRunWorkflow())
	if err != nil {
		t.Fatalf("EncodeWorkflow: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCommandRoundTrip(t *testing.T) {
	rc := sampleRunWorkflow().Commands[0]
	data, err := EncodeCommand(rc)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	decoded, err := DecodeCommand(data)
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if decoded.Name != rc.Name || decoded.Microservice != rc.Microservice || decoded.UUID != rc.UUID {
		t.Fatalf("decoded = %+v", decoded.Command)
	}
}
