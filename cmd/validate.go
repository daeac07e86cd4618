package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labforge/go-conductor/internal/composition"
	"github.com/labforge/go-conductor/internal/logger"
	"github.com/labforge/go-conductor/pkg/library"
)

var validateStructureOnly bool

// validateCmd checks a workflow file without executing it
var validateCmd = &cobra.Command{
	Use:   "validate [workflow file]",
	Short: "Validate a workflow without executing it",
	Long: `Validate a workflow file: structural checks always run, and unless
--structure-only is set every step is also resolved against the
loaded command library.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, _, err := composition.LoadRunWorkflow(args[0])
		if err != nil {
			return fmt.Errorf("failed to load workflow: %w", err)
		}

		var lib *library.DriverLibrary
		if !validateStructureOnly {
			lib, err = loadLibrary()
			if err != nil {
				return fmt.Errorf("failed to load library: %w", err)
			}
		}

		errs := composition.ValidateRunWorkflow(run, lib)
		if len(errs) > 0 {
			for _, err := range errs {
				logger.LogError("Workflow validation error", err, nil)
			}
			return fmt.Errorf("workflow validation failed with %d errors", len(errs))
		}

		fmt.Printf("workflow %q is valid (%d steps)\n", run.Name, run.Len())
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStructureOnly, "structure-only", false, "skip resolving steps against the library")
}
