package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var catalogFormat string

// catalogCmd prints the catalog projection of the loaded library
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the command catalog of the loaded library",
	Long: `Print the catalog projection of the loaded library: every
microservice with its commands, parameter specifications and return
signatures, without bindings or runtime state. This is the view a
planner works against.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return fmt.Errorf("failed to load library: %w", err)
		}

		info := lib.ToInfo()
		switch catalogFormat {
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(info)
		case "names":
			for _, msName := range info.MicroserviceNames() {
				fmt.Println(msName)
				ms, err := info.Get(msName)
				if err != nil {
					return err
				}
				for _, cmdName := range ms.CommandNames() {
					fmt.Printf("  %s\n", cmdName)
				}
			}
			return nil
		default:
			return fmt.Errorf("unsupported catalog format: %s", catalogFormat)
		}
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "yaml", "output format: yaml or names")
}
