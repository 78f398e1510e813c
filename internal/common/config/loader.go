// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SANITIZER_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when not present
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from multiple locations so binaries and tests can run
// from different directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "symptom-pipeline"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Pipeline.MaxConditions == 0 {
		cfg.Pipeline.MaxConditions = 5
	}
	if cfg.Pipeline.BatchWidth == 0 {
		cfg.Pipeline.BatchWidth = 2
	}
	if cfg.Pipeline.BatchWidth > cfg.Pipeline.MaxConditions {
		cfg.Pipeline.BatchWidth = cfg.Pipeline.MaxConditions
	}
	if cfg.Pipeline.MinSymptomLength == 0 {
		cfg.Pipeline.MinSymptomLength = 10
	}
	if cfg.Pipeline.DefaultProbability == 0 {
		cfg.Pipeline.DefaultProbability = 0.70
	}
	if cfg.Pipeline.ConfidenceThreshold == 0 {
		cfg.Pipeline.ConfidenceThreshold = 0.50
	}
	if cfg.Pipeline.MaxClinics == 0 {
		cfg.Pipeline.MaxClinics = 5
	}
	if cfg.Pipeline.MinClinicRating == 0 {
		cfg.Pipeline.MinClinicRating = 3.5
	}
	if cfg.Pipeline.SessionTTL == 0 {
		cfg.Pipeline.SessionTTL = 3600
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for _, svc := range []*ServiceEndpoint{
		&cfg.Services.Sanitizer,
		&cfg.Services.Reasoning,
		&cfg.Services.Research,
		&cfg.Services.Clinics,
		&cfg.Services.Location,
	} {
		if svc.Timeout == 0 {
			svc.Timeout = 30000
		}
	}
}

// overrideEmptyConfig picks up credentials directly from the environment when
// placeholder expansion left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Services.Sanitizer.APIKey == "" {
		if val := os.Getenv("SANITIZER_API_KEY"); val != "" {
			cfg.Services.Sanitizer.APIKey = val
		}
	}
	if cfg.Services.Reasoning.APIKey == "" {
		if val := os.Getenv("REASONING_API_KEY"); val != "" {
			cfg.Services.Reasoning.APIKey = val
		}
	}
	if cfg.Services.Research.APIKey == "" {
		if val := os.Getenv("RESEARCH_API_KEY"); val != "" {
			cfg.Services.Research.APIKey = val
		}
	}
	if cfg.Services.Clinics.APIKey == "" {
		if val := os.Getenv("CLINICS_API_KEY"); val != "" {
			cfg.Services.Clinics.APIKey = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Pipeline.MaxConditions < 1 {
		return fmt.Errorf("pipeline.max_conditions must be >= 1")
	}
	if cfg.Pipeline.BatchWidth < 1 {
		return fmt.Errorf("pipeline.batch_width must be >= 1")
	}
	if cfg.Pipeline.DefaultProbability < 0 || cfg.Pipeline.DefaultProbability > 1 {
		return fmt.Errorf("pipeline.default_probability must be in [0,1]")
	}
	if cfg.Pipeline.ConfidenceThreshold < 0 || cfg.Pipeline.ConfidenceThreshold > 1 {
		return fmt.Errorf("pipeline.confidence_threshold must be in [0,1]")
	}
	if cfg.Pipeline.SessionTTL < 1 {
		return fmt.Errorf("pipeline.session_ttl must be >= 1 second")
	}
	return nil
}
