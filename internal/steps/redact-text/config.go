// internal/steps/redact-text/config.go
package redacttext

import (
	"time"

	"symptom-pipeline/internal/common/config"
)

type Config struct {
	SanitizerBaseURL string
	SanitizerAPIKey  string
	Timeout          time.Duration
}

func NewConfig(svc config.ServiceEndpoint) *Config {
	return &Config{
		SanitizerBaseURL: svc.BaseURL,
		SanitizerAPIKey:  svc.APIKey,
		Timeout:          svc.TimeoutDuration(),
	}
}
