// internal/steps/deep-research/config.go
package deepresearch

import (
	"time"

	"symptom-pipeline/internal/common/config"
)

type Config struct {
	ResearchBaseURL string
	ResearchAPIKey  string
	Timeout         time.Duration
	BatchWidth      int
}

func NewConfig(svc config.ServiceEndpoint, pipeline config.PipelineConfig) *Config {
	return &Config{
		ResearchBaseURL: svc.BaseURL,
		ResearchAPIKey:  svc.APIKey,
		Timeout:         svc.TimeoutDuration(),
		BatchWidth:      pipeline.BatchWidth,
	}
}
