package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "go-conductor"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "CONDUCTOR"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// Library settings
	Library struct {
		// Path to the library definition loaded at startup. Empty
		// means the built-in demo library.
		Path string `mapstructure:"path"`
	} `mapstructure:"library"`

	// Workflow settings
	Workflow struct {
		// Default workflow file executed when none is given on the
		// command line.
		Path string `mapstructure:"path"`

		// Seed variables merged into the workflow's global scope
		// before execution.
		Variables map[string]interface{} `mapstructure:"variables"`
	} `mapstructure:"workflow"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	// Viper instance
	v *viper.Viper

	// Ensure thread safety
	initOnce sync.Once
)

// Initialize sets up the configuration system
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		// Create a new viper instance
		v = viper.New()

		// Set default values
		setDefaults(v)

		// Load configuration from file if specified
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
		} else {
			// Set config name and type
			v.SetConfigName(AppName)
			v.SetConfigType("yaml")

			// Add default search paths
			addSearchPaths(v)
		}

		// Set up environment variables
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()

		// Read configuration file
		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				// Only capture error if the config file was found but couldn't be read
				err = fmt.Errorf("error reading config file: %w", readErr)
			}
			// Config file not found, using defaults and environment variables
			ConfigLoaded = false
			ConfigFile = ""
		} else {
			ConfigLoaded = true
			ConfigFile = v.ConfigFileUsed()
		}

		// Unmarshal config into struct
		if unmarshalErr := v.Unmarshal(&Instance); unmarshalErr != nil {
			err = fmt.Errorf("error parsing config: %w", unmarshalErr)
			return
		}

		// Ensure required directories exist
		ensureDirectories()
	})

	return err
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", filepath.Join("logs", "conductor.log"))

	// Library defaults
	v.SetDefault("library.path", "")

	// Workflow defaults
	v.SetDefault("workflow.path", "")
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	// Check for CI/Pipeline environment
	if isRunningInPipeline() {
		// In CI/Pipeline, only use current directory and explicit CI directories
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	// Standard operation - add user config directory
	if home, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, AppName))
	}

	// Add system-wide config directory
	v.AddConfigPath("/etc/" + AppName)
}

// ensureDirectories creates necessary directories based on configuration
func ensureDirectories() {
	// Don't create directories in a pipeline environment unless explicitly requested
	if isRunningInPipeline() && os.Getenv("CREATE_DIRS") != "true" {
		return
	}

	// Create log directory
	if Instance.LogFile != "" {
		logDir := filepath.Dir(Instance.LogFile)
		_ = os.MkdirAll(logDir, 0o755)
	}
}

// SaveConfig saves the current configuration to a file
func SaveConfig(filePath string) error {
	// Create a new viper instance for saving
	saveV := viper.New()

	// Set the configuration to match our current Instance
	saveV.SetConfigFile(filePath)

	// Convert the struct to a map
	configMap := structToMap(Instance)

	// Set the values in viper
	for k, v := range configMap {
		saveV.Set(k, v)
	}

	// Ensure the directory exists
	configDir := filepath.Dir(filePath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write the configuration to file
	return saveV.WriteConfig()
}

// structToMap converts a struct to a map using viper
func structToMap(config interface{}) map[string]interface{} {
	tempV := viper.New()
	tempV.SetConfigType("yaml")

	// Use a temporary key to store the struct
	tempV.Set("temp", config)

	// Extract the map
	if allSettings := tempV.AllSettings(); allSettings != nil {
		if tempMap, ok := allSettings["temp"].(map[string]interface{}); ok {
			return tempMap
		}
	}

	// Fallback to empty map
	return make(map[string]interface{})
}

// isRunningInPipeline returns true if running in a CI/CD pipeline environment
func isRunningInPipeline() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("PIPELINE") == "true" ||
		os.Getenv("GITHUB_ACTIONS") == "true" ||
		os.Getenv("JENKINS_URL") != ""
}
