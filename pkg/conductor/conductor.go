// Package conductor is the embeddable API for programs that want to
// run workflows without going through the CLI. It wraps configuration,
// logging, library loading and workflow execution behind a handful of
// calls.
package conductor

import (
	"fmt"
	"os"
	"strings"

	"github.com/labforge/go-conductor/internal/composition"
	"github.com/labforge/go-conductor/internal/config"
	"github.com/labforge/go-conductor/internal/drivers"
	"github.com/labforge/go-conductor/internal/logger"
	"github.com/labforge/go-conductor/pkg/library"
	"github.com/labforge/go-conductor/pkg/wire"
	"github.com/labforge/go-conductor/pkg/workflow"
)

// InitOptions contains options for initializing the conductor API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	LibraryFile string // Path to a library definition; empty for the demo library
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
}

// WorkflowResult contains the results of a workflow execution
type WorkflowResult struct {
	Success      bool                   // Whether the workflow completed successfully
	ErrorMessage string                 // Error message if any
	StepResults  []map[string]any       // Per-step handler results, in execution order
	Variables    map[string]interface{} // Seed variables the run started with
}

var (
	initialized bool
	lib         *library.DriverLibrary
)

// Initialize initializes the conductor API with the given options
func Initialize(options InitOptions) error {
	if initialized {
		return nil // Already initialized
	}

	// Initialize configuration
	configErr := config.Initialize(options.ConfigFile)

	// Update config with provided options
	if options.Debug {
		config.Instance.Debug = true
	}

	if options.LogFormat != "" {
		config.Instance.LogFormat = options.LogFormat
	}

	if options.LogFile != "" {
		config.Instance.LogFile = options.LogFile
	}

	// Initialize logging
	if !options.SuppressLog {
		logConfig := logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}

		if err := logger.InitLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	// Load the command library
	libraryFile := options.LibraryFile
	if libraryFile == "" {
		libraryFile = config.Instance.Library.Path
	}
	loaded, err := loadLibrary(libraryFile)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	lib = loaded

	// Log initialization if logging is not suppressed
	if !options.SuppressLog {
		logger.LogInfo("Conductor API initialized", map[string]interface{}{
			"config_file": options.ConfigFile,
			"library":     lib.Name,
			"debug":       options.Debug,
		})

		// Log configuration error if any
		if configErr != nil {
			logger.LogWarn("Configuration initialization warning", map[string]interface{}{
				"error": configErr.Error(),
			})
		}
	}

	initialized = true
	return nil
}

// DefaultOptions returns the default initialization options
func DefaultOptions() InitOptions {
	return InitOptions{
		Debug:       false,
		LogFormat:   "human",
		LogFile:     "logs/conductor.log",
		SuppressLog: false,
	}
}

func loadLibrary(path string) (*library.DriverLibrary, error) {
	if path == "" {
		return drivers.NewMicrowaveLibrary()
	}
	if err := drivers.RegisterBuiltins(); err != nil {
		return nil, err
	}
	def, err := composition.LoadLibraryDefinition(path)
	if err != nil {
		return nil, err
	}
	return composition.BuildLibrary(def)
}

// Library returns the loaded driver library.
func Library() (*library.DriverLibrary, error) {
	if !initialized {
		if err := Initialize(DefaultOptions()); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// ExecuteWorkflow executes a workflow defined in a file
func ExecuteWorkflow(workflowFile string) (*WorkflowResult, error) {
	// Ensure API is initialized
	if !initialized {
		if err := Initialize(DefaultOptions()); err != nil {
			return nil, fmt.Errorf("failed to initialize conductor API: %w", err)
		}
	}

	logger.LogInfo("Executing workflow", map[string]interface{}{
		"file": workflowFile,
	})

	// Load the workflow
	run, variables, err := composition.LoadRunWorkflow(workflowFile)
	if err != nil {
		return &WorkflowResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Failed to load workflow: %s", err.Error()),
		}, err
	}

	return execute(run, variables)
}

// ExecuteWorkflowJSON executes a workflow given as a JSON wire
// payload.
func ExecuteWorkflowJSON(payload []byte) (*WorkflowResult, error) {
	// Ensure API is initialized
	if !initialized {
		if err := Initialize(DefaultOptions()); err != nil {
			return nil, fmt.Errorf("failed to initialize conductor API: %w", err)
		}
	}

	run, err := wire.DecodeWorkflow(payload)
	if err != nil {
		return &WorkflowResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Failed to decode workflow: %s", err.Error()),
		}, err
	}

	return execute(run, nil)
}

func execute(run *workflow.RunWorkflow, variables map[string]interface{}) (*WorkflowResult, error) {
	// Validate the workflow
	errors := composition.ValidateRunWorkflow(run, lib)
	if len(errors) > 0 {
		// Concatenate all errors into a single message
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}

		errorMessage := fmt.Sprintf("Workflow validation failed with %d errors: %s",
			len(errors), strings.Join(errorMessages, "; "))

		return &WorkflowResult{
			Success:      false,
			ErrorMessage: errorMessage,
			Variables:    variables,
		}, fmt.Errorf("%s", errorMessage)
	}

	// Execute the workflow
	results, err := composition.Execute(lib, run, variables)
	if err != nil {
		return &WorkflowResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Workflow execution failed: %s", err.Error()),
			StepResults:  results,
			Variables:    variables,
		}, err
	}

	// Return successful result
	return &WorkflowResult{
		Success:     true,
		StepResults: results,
		Variables:   variables,
	}, nil
}

// ExecuteWorkflowFromYAML executes a workflow defined in a YAML string
func ExecuteWorkflowFromYAML(workflowYAML string) (*WorkflowResult, error) {
	// Ensure API is initialized
	if !initialized {
		if err := Initialize(DefaultOptions()); err != nil {
			return nil, fmt.Errorf("failed to initialize conductor API: %w", err)
		}
	}

	// Create a temporary file for the workflow
	tempFile, err := os.CreateTemp("", "workflow-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	// Write the workflow YAML to the file
	if _, err := tempFile.WriteString(workflowYAML); err != nil {
		return nil, fmt.Errorf("failed to write workflow to temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	// Execute the workflow from the temporary file
	return ExecuteWorkflow(tempFile.Name())
}

// GetVersion returns the current version of the conductor API
func GetVersion() string {
	return "0.1.0"
}

// Shutdown performs any necessary cleanup before the application exits
func Shutdown() error {
	if initialized {
		logger.LogInfo("Conductor API shutting down", nil)
		logger.Sync()
	}
	return nil
}
