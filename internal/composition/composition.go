package composition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/labforge/go-conductor/internal/logger"
	"github.com/labforge/go-conductor/pkg/command"
	"github.com/labforge/go-conductor/pkg/interpreter"
	"github.com/labforge/go-conductor/pkg/library"
	"github.com/labforge/go-conductor/pkg/parameter"
	"github.com/labforge/go-conductor/pkg/wire"
	"github.com/labforge/go-conductor/pkg/workflow"
)

// LoadLibraryDefinition loads a library definition from a YAML or
// JSON file.
func LoadLibraryDefinition(filePath string) (*LibraryDefinition, error) {
	v, err := readDefinitionFile(filePath)
	if err != nil {
		return nil, err
	}

	def := &LibraryDefinition{}
	if err := v.Unmarshal(def); err != nil {
		return nil, fmt.Errorf("error parsing library definition: %w", err)
	}
	return def, nil
}

// BuildLibrary turns a library definition into an executable driver
// library. Every command's module/function pair is resolved through
// the handler registry, so the drivers it names must be registered
// first.
func BuildLibrary(def *LibraryDefinition) (*library.DriverLibrary, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("library definition has no name")
	}

	lib := library.NewDriverLibrary(def.Name)
	lib.Description = def.Description
	for _, msDef := range def.Microservices {
		if msDef.Name == "" {
			return nil, fmt.Errorf("library %q: microservice with no name", def.Name)
		}
		ms := library.NewDriverMicroservice(msDef.Name)
		ms.Description = msDef.Description
		if msDef.UUID != "" {
			id, err := uuid.Parse(msDef.UUID)
			if err != nil {
				return nil, fmt.Errorf("microservice %s: invalid uuid %q: %w",
					msDef.Name, msDef.UUID, err)
			}
			ms.UUID = id
		}
		for _, cmdDef := range msDef.Commands {
			cmd, err := buildCommand(msDef.Name, cmdDef)
			if err != nil {
				return nil, err
			}
			if err := ms.Add(cmd); err != nil {
				return nil, err
			}
		}
		lib.Add(ms)
	}
	return lib, nil
}

func buildCommand(microservice string, def CommandDefinition) (*command.DriverCommand, error) {
	// Parameter maps in YAML carry the name as the key; fill it into
	// the model when the entry omits it.
	for name, model := range def.Parameters {
		if model.Name == "" {
			model.Name = name
		}
	}

	cmd, err := command.NewDriver(command.DriverConfig{
		Name:            def.Name,
		Microservice:    microservice,
		Description:     def.Description,
		Parameters:      def.Parameters,
		Module:          def.Module,
		Function:        def.Function,
		HasReturn:       def.HasReturn,
		ReturnSignature: def.ReturnSignature,
	})
	if err != nil {
		return nil, fmt.Errorf("command %s/%s: %w", microservice, def.Name, err)
	}
	return cmd, nil
}

// LoadRunWorkflow loads a run workflow from a file. JSON files go
// through the wire codec and its schema check; YAML files are decoded
// as workflow definitions.
func LoadRunWorkflow(filePath string) (*workflow.RunWorkflow, map[string]interface{}, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("workflow file not found: %s", filePath)
	}

	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading workflow file: %w", err)
		}
		run, err := wire.DecodeWorkflow(data)
		if err != nil {
			return nil, nil, err
		}
		return run, nil, nil
	}

	v, err := readDefinitionFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	def := &WorkflowDefinition{}
	if err := v.Unmarshal(def); err != nil {
		return nil, nil, fmt.Errorf("error parsing workflow: %w", err)
	}
	run, err := buildRunWorkflow(def)
	if err != nil {
		return nil, nil, err
	}
	return run, def.Variables, nil
}

func buildRunWorkflow(def *WorkflowDefinition) (*workflow.RunWorkflow, error) {
	run := workflow.NewRunWorkflow(def.Name)
	for i, step := range def.Steps {
		rc := &command.RunCommand{
			Command: command.Command{
				Name:         step.Name,
				Microservice: step.Microservice,
			},
			SaveVars: step.SaveVars,
		}
		if step.UUID != "" {
			id, err := uuid.Parse(step.UUID)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): invalid uuid %q: %w", i, step.Name, step.UUID, err)
			}
			rc.UUID = id
		}
		if len(step.Parameters) > 0 {
			rc.Parameters = make(map[string]*parameter.Parameter, len(step.Parameters))
			for name, sp := range step.Parameters {
				p := parameter.NewLiteral(sp.Value)
				if sp.FromVar {
					p.SetVar(sp.VarName)
				}
				rc.Parameters[name] = p
			}
		}
		run.Append(rc)
	}
	return run, nil
}

// ValidateRunWorkflow validates the structure of a run workflow and,
// when a library is given, checks that every step resolves to a
// registered command.
func ValidateRunWorkflow(run *workflow.RunWorkflow, lib *library.DriverLibrary) []error {
	var errors []error

	// Validate required fields
	if run.Name == "" {
		errors = append(errors, fmt.Errorf("workflow name is required"))
	}

	if run.Len() == 0 {
		errors = append(errors, fmt.Errorf("workflow must contain at least one step"))
	}

	// Validate each step
	for i, rc := range run.Commands {
		if rc.Name == "" {
			errors = append(errors, fmt.Errorf("step %d: name is required", i+1))
		}
		if rc.Microservice == "" && rc.UUID == uuid.Nil {
			errors = append(errors, fmt.Errorf("step %d (%s): microservice or uuid is required", i+1, rc.Name))
		}

		for name, p := range rc.Parameters {
			if p.FromVar && p.VarName == "" {
				errors = append(errors, fmt.Errorf("step %d (%s): parameter %q is indirected but names no variable", i+1, rc.Name, name))
			}
		}

		if lib == nil {
			continue
		}
		if rc.UUID != uuid.Nil {
			ms, err := lib.GetByUUID(rc.UUID)
			if err == nil {
				_, err = ms.Get(rc.Name)
			}
			if err != nil {
				errors = append(errors, fmt.Errorf("step %d (%s): %w", i+1, rc.Name, err))
			}
			continue
		}
		if _, err := lib.GetCommand(rc.Microservice, rc.Name); err != nil {
			errors = append(errors, fmt.Errorf("step %d (%s): %w", i+1, rc.Name, err))
		}
	}

	return errors
}

// Execute interprets a run workflow against a driver library and runs
// it. Seed variables are merged into the workflow's global scope
// before the first step.
func Execute(lib *library.DriverLibrary, run *workflow.RunWorkflow, variables map[string]interface{}) ([]map[string]any, error) {
	it, err := interpreter.New(interpreter.Options{
		Library: lib,
		Logger:  logger.Sugared(),
	})
	if err != nil {
		return nil, err
	}

	driver, err := it.InterpretWorkflow(run)
	if err != nil {
		return nil, err
	}

	globals := driver.Globals()
	for k, v := range variables {
		globals[k] = v
	}

	saveVarList := make([]map[string]string, run.Len())
	kwargsList := make([]map[string]any, run.Len())
	for i, rc := range run.Commands {
		saveVarList[i] = rc.SaveVars
		kwargsList[i] = rc.Kwargs()
	}

	logger.LogInfo("Starting workflow execution", map[string]interface{}{
		"workflow": run.Name,
		"steps":    run.Len(),
	})
	results, err := driver.Exec(saveVarList, kwargsList)
	if err != nil {
		return results, err
	}
	logger.LogInfo("Workflow execution completed successfully", map[string]interface{}{
		"workflow": run.Name,
	})
	return results, nil
}

// readDefinitionFile opens a definition file with a fresh viper
// instance, inferring the format from the extension.
func readDefinitionFile(filePath string) (*viper.Viper, error) {
	v := viper.New()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}

	v.SetConfigFile(filePath)

	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != "" {
		v.SetConfigType(ext[1:]) // Remove the leading dot
	} else {
		// Default to YAML if no extension
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filePath, err)
	}
	return v, nil
}
