// internal/steps/forum-debate/handler.go
package forumdebate

import (
	"context"

	"symptom-pipeline/internal/common/logger"
)

const (
	StepName = "forum-debate"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"step": StepName,
		}),
	}
}

// Execute assigns a confidence value to each finding. Today this is a
// constant assignment keyed only on whether the finding degraded; the
// surrounding contract allows a future multi-round exchange without changing
// callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	assessments := make([]Assessment, len(input.Findings))
	for i, finding := range input.Findings {
		confidence := h.config.BaseConfidence
		if finding.Degraded || finding.Evidence == "" {
			confidence = h.config.DegradedConfidence
		}
		assessments[i] = Assessment{
			Condition:  finding.Condition,
			Confidence: clamp01(confidence),
		}
	}

	h.logger.Debug("debate pass completed", map[string]interface{}{
		"findings": len(input.Findings),
	})

	return &Output{Assessments: assessments}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
