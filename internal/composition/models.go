package composition

import "github.com/labforge/go-conductor/pkg/parameter"

// LibraryDefinition is the on-disk form of a driver library: the
// microservices to register and, per command, the module/function
// pair naming the handler it binds to.
type LibraryDefinition struct {
	// Name of the library (required)
	Name string `mapstructure:"name"`

	// Optional description of the library
	Description string `mapstructure:"description,omitempty"`

	// Microservices to register
	Microservices []MicroserviceDefinition `mapstructure:"microservices"`
}

// MicroserviceDefinition groups the command definitions of one device
// or service.
type MicroserviceDefinition struct {
	// Unique name for the microservice (required)
	Name string `mapstructure:"name"`

	// Optional description of the microservice
	Description string `mapstructure:"description,omitempty"`

	// Stable identifier for the microservice; a fresh one is
	// assigned when omitted. Commands inherit it on registration.
	UUID string `mapstructure:"uuid,omitempty"`

	// Commands exposed by the microservice
	Commands []CommandDefinition `mapstructure:"commands"`
}

// CommandDefinition describes one executable command.
type CommandDefinition struct {
	// Unique name within the microservice (required)
	Name string `mapstructure:"name"`

	// Optional human-readable description
	Description string `mapstructure:"description,omitempty"`

	// Handler registry binding (required)
	Module   string `mapstructure:"module"`
	Function string `mapstructure:"function"`

	// Parameter specifications keyed by parameter name
	Parameters map[string]*parameter.Model `mapstructure:"parameters,omitempty"`

	// Return metadata
	HasReturn       bool              `mapstructure:"has_return,omitempty"`
	ReturnSignature map[string]string `mapstructure:"return_signature,omitempty"`
}

// WorkflowDefinition is the on-disk YAML form of a run workflow.
// JSON workflow files bypass it and go through the wire codec.
type WorkflowDefinition struct {
	// Name of the workflow (required)
	Name string `mapstructure:"name"`

	// Optional description of the workflow
	Description string `mapstructure:"description,omitempty"`

	// Seed values for the workflow's global variable scope
	Variables map[string]interface{} `mapstructure:"variables,omitempty"`

	// Ordered list of steps to execute
	Steps []StepDefinition `mapstructure:"steps"`
}

// StepDefinition is one workflow step in its on-disk form.
type StepDefinition struct {
	// Command name (required)
	Name string `mapstructure:"name"`

	// Owning microservice (required)
	Microservice string `mapstructure:"microservice"`

	// Owning microservice's identifier; takes precedence over the
	// microservice name when present
	UUID string `mapstructure:"uuid,omitempty"`

	// Parameter values keyed by parameter name
	Parameters map[string]StepParameter `mapstructure:"parameters,omitempty"`

	// Result keys to copy into workflow globals
	SaveVars map[string]string `mapstructure:"save_vars,omitempty"`
}

// StepParameter is a single parameter value of a step: either a
// literal value or an indirection through a workflow global.
type StepParameter struct {
	Value   interface{} `mapstructure:"value,omitempty"`
	FromVar bool        `mapstructure:"from_var,omitempty"`
	VarName string      `mapstructure:"var_name,omitempty"`
}
