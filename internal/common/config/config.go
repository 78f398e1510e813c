// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct. It is built once at
// process start and passed by reference to every component that needs it.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Services ServicesConfig `mapstructure:"services"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PipelineConfig holds the orchestration knobs. BatchWidth is the only
// concurrency tunable in the system.
type PipelineConfig struct {
	MaxConditions       int     `mapstructure:"max_conditions"`
	BatchWidth          int     `mapstructure:"batch_width"`
	MinSymptomLength    int     `mapstructure:"min_symptom_length"`
	DefaultProbability  float64 `mapstructure:"default_probability"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"` // advisory labeling only
	MaxClinics          int     `mapstructure:"max_clinics"`
	MinClinicRating     float64 `mapstructure:"min_clinic_rating"`
	SessionTTL          int     `mapstructure:"session_ttl"` // seconds
}

// SessionTTLDuration returns the session TTL as a time.Duration.
func (p PipelineConfig) SessionTTLDuration() time.Duration {
	return time.Duration(p.SessionTTL) * time.Second
}

// ServicesConfig holds endpoints and credentials for all external collaborators.
type ServicesConfig struct {
	Sanitizer ServiceEndpoint `mapstructure:"sanitizer"`
	Reasoning ServiceEndpoint `mapstructure:"reasoning"`
	Research  ServiceEndpoint `mapstructure:"research"`
	Clinics   ServiceEndpoint `mapstructure:"clinics"`
	Location  ServiceEndpoint `mapstructure:"location"`
}

type ServiceEndpoint struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// TimeoutDuration returns the endpoint timeout as a time.Duration.
func (s ServiceEndpoint) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
