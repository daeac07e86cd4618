package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/labforge/go-conductor/internal/composition"
	"github.com/labforge/go-conductor/internal/config"
	"github.com/labforge/go-conductor/internal/drivers"
	"github.com/labforge/go-conductor/internal/logger"
	"github.com/labforge/go-conductor/pkg/library"
)

var cfgFile string
var libraryFile string

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "go-conductor",
	Short: "A workflow conductor for typed device commands",
	Long: `go-conductor builds libraries of typed, validated device commands
and executes workflows against them.

Commands declare parameter specifications with types, limits and
allowed values; workflows chain commands and pass results between
steps through shared variables. Libraries and workflows are plain
YAML or JSON files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// CLI flags can override config settings
		debug, _ := cmd.Flags().GetBool("debug")
		logFormat, _ := cmd.Flags().GetString("log-format")

		// If CLI flags were explicitly provided, update the global config
		if cmd.Flags().Changed("debug") {
			config.Instance.Debug = debug
		}

		if cmd.Flags().Changed("log-format") {
			config.Instance.LogFormat = logFormat
		}

		// If config file was explicitly specified via flag, reinitialize
		if cmd.Flags().Changed("config") && cfgFile != "" {
			// Only log an error, don't exit, as the config may still be usable
			if err := config.Initialize(cfgFile); err != nil {
				logger.LogError("Error loading config file", err, map[string]interface{}{
					"config_file": cfgFile,
				})
			}
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.LogError("Command execution failed", err, nil)
		// Let Cobra handle the exit
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in standard locations)")

	// Library definition flag
	rootCmd.PersistentFlags().StringVarP(&libraryFile, "library", "l", "", "library definition file (default is the built-in demo library)")

	// Debug flag
	rootCmd.PersistentFlags().Bool("debug", config.Instance.Debug, "Enable debug logging")

	// Log format flag
	rootCmd.PersistentFlags().String("log-format", config.Instance.LogFormat, "Log format: json or human")

	// Bind flags to viper settings
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("library.path", rootCmd.PersistentFlags().Lookup("library"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadLibrary builds the driver library named on the command line or
// in the config, falling back to the built-in demo library.
func loadLibrary() (*library.DriverLibrary, error) {
	path := libraryFile
	if path == "" {
		path = config.Instance.Library.Path
	}
	if path == "" {
		logger.LogDebug("No library definition given, using demo library", nil)
		return drivers.NewMicrowaveLibrary()
	}

	// Built-in handlers must be registered before a definition can
	// bind to them by module and function name.
	if err := drivers.RegisterBuiltins(); err != nil {
		return nil, err
	}

	def, err := composition.LoadLibraryDefinition(path)
	if err != nil {
		return nil, err
	}
	return composition.BuildLibrary(def)
}
