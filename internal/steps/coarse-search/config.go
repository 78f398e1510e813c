// internal/steps/coarse-search/config.go
package coarsesearch

import (
	"time"

	"symptom-pipeline/internal/common/config"
)

type Config struct {
	ReasoningBaseURL string
	ReasoningAPIKey  string
	Timeout          time.Duration
	MaxConditions    int
}

func NewConfig(svc config.ServiceEndpoint, pipeline config.PipelineConfig) *Config {
	return &Config{
		ReasoningBaseURL: svc.BaseURL,
		ReasoningAPIKey:  svc.APIKey,
		Timeout:          svc.TimeoutDuration(),
		MaxConditions:    pipeline.MaxConditions,
	}
}
