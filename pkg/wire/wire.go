// Package wire is the JSON codec for run workflows and run commands,
// the only forms meant to cross a process boundary. Payloads are
// checked against an embedded JSON Schema before decoding, so a
// malformed document is rejected with a structural error instead of
// surfacing as a half-built workflow.
package wire

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/labforge/go-conductor/pkg/command"
	"github.com/labforge/go-conductor/pkg/parameter"
	"github.com/labforge/go-conductor/pkg/workflow"
)

//go:embed schema/run_workflow.schema.json
var workflowSchema string

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		const name = "run_workflow.schema.json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(name, strings.NewReader(workflowSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(name)
	})
	return compiledSchema, schemaErr
}

// Validate checks a raw workflow payload against the wire schema
// without building anything.
func Validate(data []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("parse workflow payload: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("workflow payload does not match schema: %w", err)
	}
	return nil
}

// parameterDoc is the wire shape of a single parameter value.
type parameterDoc struct {
	Value   any    `json:"value,omitempty"`
	FromVar bool   `json:"from_var,omitempty"`
	VarName string `json:"var_name,omitempty"`
}

// commandDoc is the wire shape of a run command.
type commandDoc struct {
	Name         string                  `json:"name"`
	Microservice string                  `json:"microservice"`
	UUID         string                  `json:"uuid,omitempty"`
	Description  string                  `json:"description,omitempty"`
	Parameters   map[string]parameterDoc `json:"parameters,omitempty"`
	SaveVars     map[string]string       `json:"save_vars,omitempty"`
}

// workflowDoc is the wire shape of a run workflow.
type workflowDoc struct {
	Name     string       `json:"name"`
	Commands []commandDoc `json:"commands"`
}

func encodeCommand(rc *command.RunCommand) commandDoc {
	doc := commandDoc{
		Name:         rc.Name,
		Microservice: rc.Microservice,
		Description:  rc.Description,
		SaveVars:     rc.SaveVars,
	}
	if rc.UUID != uuid.Nil {
		doc.UUID = rc.UUID.String()
	}
	if len(rc.Parameters) > 0 {
		doc.Parameters = make(map[string]parameterDoc, len(rc.Parameters))
		for name, p := range rc.Parameters {
			doc.Parameters[name] = parameterDoc{
				Value:   p.Value(),
				FromVar: p.FromVar,
				VarName: p.VarName,
			}
		}
	}
	return doc
}

func decodeCommand(doc commandDoc) (*command.RunCommand, error) {
	rc := &command.RunCommand{
		Command: command.Command{
			Name:         doc.Name,
			Microservice: doc.Microservice,
			Description:  doc.Description,
		},
		SaveVars: doc.SaveVars,
	}
	if doc.UUID != "" {
		id, err := uuid.Parse(doc.UUID)
		if err != nil {
			return nil, fmt.Errorf("command %q: invalid uuid %q: %w", doc.Name, doc.UUID, err)
		}
		rc.UUID = id
	}
	if len(doc.Parameters) > 0 {
		rc.Parameters = make(map[string]*parameter.Parameter, len(doc.Parameters))
		for name, pd := range doc.Parameters {
			p := parameter.NewLiteral(pd.Value)
			if pd.FromVar {
				p.SetVar(pd.VarName)
			}
			rc.Parameters[name] = p
		}
	}
	return rc, nil
}

// EncodeCommand serializes a run command.
func EncodeCommand(rc *command.RunCommand) ([]byte, error) {
	return marshalIndent(encodeCommand(rc))
}

// DecodeCommand deserializes a run command.
func DecodeCommand(data []byte) (*command.RunCommand, error) {
	var doc commandDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse command payload: %w", err)
	}
	return decodeCommand(doc)
}

// EncodeWorkflow serializes a run workflow.
func EncodeWorkflow(w *workflow.RunWorkflow) ([]byte, error) {
	doc := workflowDoc{Name: w.Name, Commands: make([]commandDoc, 0, len(w.Commands))}
	for _, rc := range w.Commands {
		doc.Commands = append(doc.Commands, encodeCommand(rc))
	}
	return marshalIndent(doc)
}

// DecodeWorkflow validates a workflow payload against the wire schema
// and deserializes it.
func DecodeWorkflow(data []byte) (*workflow.RunWorkflow, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc workflowDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow payload: %w", err)
	}
	w := workflow.NewRunWorkflow(doc.Name)
	for _, cd := range doc.Commands {
		rc, err := decodeCommand(cd)
		if err != nil {
			return nil, err
		}
		w.Append(rc)
	}
	return w, nil
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
