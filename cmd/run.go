package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labforge/go-conductor/internal/composition"
	"github.com/labforge/go-conductor/internal/config"
	"github.com/labforge/go-conductor/internal/logger"
)

var printResults bool

// runCmd executes a workflow file against the loaded library
var runCmd = &cobra.Command{
	Use:   "run [workflow file]",
	Short: "Execute a workflow",
	Long: `Execute a workflow file against the loaded command library.

The workflow may be a YAML definition or a JSON wire payload. Step
results saved to variables are available to later steps; the final
per-step results are printed as JSON when --print is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := config.Instance.Workflow.Path
		if len(args) > 0 {
			file = args[0]
		}
		if file == "" {
			return fmt.Errorf("no workflow file given")
		}

		lib, err := loadLibrary()
		if err != nil {
			return fmt.Errorf("failed to load library: %w", err)
		}

		run, variables, err := composition.LoadRunWorkflow(file)
		if err != nil {
			return fmt.Errorf("failed to load workflow: %w", err)
		}

		// Config-level seed variables apply first, the workflow's own
		// override them.
		merged := make(map[string]interface{})
		for k, v := range config.Instance.Workflow.Variables {
			merged[k] = v
		}
		for k, v := range variables {
			merged[k] = v
		}

		if errs := composition.ValidateRunWorkflow(run, lib); len(errs) > 0 {
			for _, err := range errs {
				logger.LogError("Workflow validation error", err, nil)
			}
			return fmt.Errorf("workflow validation failed with %d errors", len(errs))
		}

		results, err := composition.Execute(lib, run, merged)
		if err != nil {
			return fmt.Errorf("workflow execution failed: %w", err)
		}

		if printResults {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&printResults, "print", false, "print per-step results as JSON")
}
