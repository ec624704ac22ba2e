package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from config files,
// environment variables, .env files and flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Config file
	ConfigFile string

	// Source files
	LegacyFile           string
	SpreadsheetFile      string
	SupplierFile         string
	ReverseLogisticsFile string
	HistoricalFile       string

	// Pipeline configuration
	Delimiter string
	OutputDir string
	Overrides string

	// Collaborator configuration
	APIKey  string
	Model   string
	Correct bool
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.dracve.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// API key resolution: prefer GEMINI_API_KEY, fall back to the
	// generic API_KEY.
	_ = viper.BindEnv("api_key", "GEMINI_API_KEY", "API_KEY")

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".dracve")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("delimiter", ",")
	viper.SetDefault("model", "")

	config := &Config{
		Verbose:    viper.GetBool("verbose"),
		Quiet:      viper.GetBool("quiet"),
		ConfigFile: viper.ConfigFileUsed(),
		Delimiter:  viper.GetString("delimiter"),
		OutputDir:  viper.GetString("output_dir"),
		APIKey:     viper.GetString("api_key"),
		Model:      viper.GetString("model"),
	}
	return config, nil
}

// loadEnvFiles loads .env files from the working directory, most specific
// last so earlier files win (godotenv does not overwrite existing vars).
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}
