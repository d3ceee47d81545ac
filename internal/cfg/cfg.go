// Package cfg loads service configuration from a YAML file when
// CONFIG_FILE is set, falling back to environment variables with
// defaults, and validates every value before the service starts.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"churnd/internal/churn"
)

type Settings struct {
	Port           int
	ArtifactPath   string
	DataPath       string
	Risk           churn.RiskThresholds
	MaxBatchSize   int
	RequestTimeout time.Duration
	LogLevel       string
}

type ConfigFile struct {
	Server struct {
		Port           int    `yaml:"port"`
		MaxBatchSize   int    `yaml:"maxBatchSize"`
		RequestTimeout string `yaml:"requestTimeout"`
	} `yaml:"server"`

	Model struct {
		ArtifactPath string `yaml:"artifactPath"`
	} `yaml:"model"`

	Risk struct {
		LowMax    float64 `yaml:"lowMax"`
		MediumMax float64 `yaml:"mediumMax"`
	} `yaml:"risk"`

	System struct {
		DataPath string `yaml:"dataPath"`
		LogLevel string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	requestTimeout, err := time.ParseDuration(config.Server.RequestTimeout)
	if err != nil {
		requestTimeout = 10 * time.Second
	}

	settings := Settings{
		Port:           getIntFromEnvOrConfig("PORT", config.Server.Port, 8000),
		ArtifactPath:   getEnvOrDefault("ARTIFACT_PATH", config.Model.ArtifactPath),
		DataPath:       getEnvOrDefault("DATA_PATH", config.System.DataPath),
		MaxBatchSize:   getIntFromEnvOrConfig("MAX_BATCH_SIZE", config.Server.MaxBatchSize, 1000),
		RequestTimeout: requestTimeout,
		LogLevel:       getEnvOrDefault("LOG_LEVEL", config.System.LogLevel),
		Risk: churn.RiskThresholds{
			LowMax:    getFloatFromEnvOrConfig("RISK_LOW_MAX", config.Risk.LowMax, churn.DefaultLowRiskMax),
			MediumMax: getFloatFromEnvOrConfig("RISK_MEDIUM_MAX", config.Risk.MediumMax, churn.DefaultMediumRiskMax),
		},
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		Port:           getIntOrDefault("PORT", 8000),
		ArtifactPath:   getEnvOrDefault("ARTIFACT_PATH", "models/churn_artifact.json"),
		DataPath:       os.Getenv("DATA_PATH"), // optional, disables prediction history when empty
		MaxBatchSize:   getIntOrDefault("MAX_BATCH_SIZE", 1000),
		RequestTimeout: getDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		Risk: churn.RiskThresholds{
			LowMax:    getFloatOrDefault("RISK_LOW_MAX", churn.DefaultLowRiskMax),
			MediumMax: getFloatOrDefault("RISK_MEDIUM_MAX", churn.DefaultMediumRiskMax),
		},
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings checks every configuration value's range.
func validateSettings(settings *Settings) error {
	if settings.Port < 1024 || settings.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535, got %d", settings.Port)
	}
	if settings.ArtifactPath == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}
	if settings.MaxBatchSize <= 0 || settings.MaxBatchSize > 100000 {
		return fmt.Errorf("max batch size must be between 1 and 100000, got %d", settings.MaxBatchSize)
	}
	if settings.RequestTimeout < time.Second || settings.RequestTimeout > time.Minute {
		return fmt.Errorf("request timeout must be between 1s and 1m, got %v", settings.RequestTimeout)
	}
	if settings.Risk.LowMax <= 0 || settings.Risk.LowMax >= 1 {
		return fmt.Errorf("low risk boundary must be between 0 and 1, got %f", settings.Risk.LowMax)
	}
	if settings.Risk.MediumMax <= 0 || settings.Risk.MediumMax >= 1 {
		return fmt.Errorf("medium risk boundary must be between 0 and 1, got %f", settings.Risk.MediumMax)
	}
	if settings.Risk.LowMax >= settings.Risk.MediumMax {
		return fmt.Errorf("low risk boundary %f must be below medium boundary %f",
			settings.Risk.LowMax, settings.Risk.MediumMax)
	}
	return nil
}
