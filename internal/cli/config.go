package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codeberg.org/snonux/agritranslate/internal/catalog"
	"codeberg.org/snonux/agritranslate/internal/lang"
)

// EnvPrefix prefixes every environment variable read by viper
const EnvPrefix = "AGRITRANSLATE"

// SetDefaults registers the default configuration values
func SetDefaults() {
	home, _ := os.UserHomeDir()

	viper.SetDefault("locales.dir", filepath.Join(".", "public", "locales"))
	viper.SetDefault("locales.source_lang", lang.Source)
	viper.SetDefault("locales.file", "complete.json")
	viper.SetDefault("batch.targets", lang.DefaultBatchTargets)

	viper.SetDefault("packages.dir", filepath.Join(home, ".local", "share", "argos-translate", "packages"))
	viper.SetDefault("packages.index_url", catalog.DefaultIndexURL)
	viper.SetDefault("packages.registry_db", "")

	viper.SetDefault("local.command", "argos-translate")
	viper.SetDefault("local.args", []string{})
	viper.SetDefault("local.env", []string{})

	viper.SetDefault("hosted.backend", "http")
	viper.SetDefault("hosted.timeout", "0s")
	viper.SetDefault("hosted.breaker.failures", 5)
	viper.SetDefault("hosted.breaker.cooldown", "30s")

	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("server.shutdown_timeout", "5s")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// InitConfig initializes viper configuration. A .env file in the working
// directory is loaded into the environment first.
func InitConfig(cfgFile string) {
	// Missing .env files are fine
	_ = godotenv.Load()

	SetDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".agritranslate" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".agritranslate")
	}

	// Environment variables, e.g. AGRITRANSLATE_HOSTED_BACKEND
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("hosted.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("hosted.gemini_key")
}

// GetHostedAPIKey returns the API key for a hosted backend. hosted.api_key
// wins over the backend specific keys.
func GetHostedAPIKey(backend string) string {
	if key := viper.GetString("hosted.api_key"); key != "" {
		return key
	}
	switch backend {
	case "openai":
		return GetOpenAIKey()
	case "gemini":
		return GetGeminiKey()
	case "http":
		return os.Getenv("HF_TOKEN")
	}
	return ""
}
