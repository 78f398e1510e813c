// internal/steps/score-conditions/config.go
package scoreconditions

import "symptom-pipeline/internal/common/config"

type Config struct {
	MaxConditions       int
	DefaultProbability  float64
	ConfidenceThreshold float64
}

func NewConfig(pipeline config.PipelineConfig) *Config {
	return &Config{
		MaxConditions:       pipeline.MaxConditions,
		DefaultProbability:  pipeline.DefaultProbability,
		ConfidenceThreshold: pipeline.ConfidenceThreshold,
	}
}
