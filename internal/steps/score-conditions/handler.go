// internal/steps/score-conditions/handler.go
package scoreconditions

import (
	"context"
	"sort"
	"strings"

	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/models"
)

const (
	StepName = "score-conditions"

	// dampeningFactor is applied to all probabilities when the submission is
	// vague and the evidence confidence is weak.
	dampeningFactor = 0.8

	vagueSymptomsWarning = "Your symptoms are quite general, so these results are less specific than usual. Consider providing more detail."
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

// Execute converts findings plus debate confidences into the final ranked
// ConditionResult list. A finding is dropped only when both probability and
// confidence are exactly zero; the confidence threshold is advisory labeling
// for the consumer and never excludes a result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	results := make([]models.ConditionResult, 0, len(input.Findings))

	for i, finding := range input.Findings {
		probability := h.config.DefaultProbability
		if finding.ProbabilitySignal != nil && *finding.ProbabilitySignal >= 0 && *finding.ProbabilitySignal <= 1 {
			probability = *finding.ProbabilitySignal
		}

		confidence := 0.0
		if i < len(input.Confidences) {
			confidence = clamp01(input.Confidences[i])
		}
		probability = clamp01(probability)

		if probability == 0 && confidence == 0 {
			h.logger.Debug("dropping zero-scored finding", map[string]interface{}{
				"condition": finding.Condition,
			})
			continue
		}

		results = append(results, models.ConditionResult{
			Name:             finding.Condition,
			Probability:      probability,
			Confidence:       confidence,
			Evidence:         finding.Evidence,
			RecommendedTests: recommendedTests(finding.Condition),
		})
	}

	warning := ""
	if shouldDampen(input.SanitizedText, results) {
		for i := range results {
			results[i].Probability = clamp01(results[i].Probability * dampeningFactor)
		}
		warning = vagueSymptomsWarning
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})

	if len(results) > h.config.MaxConditions {
		results = results[:h.config.MaxConditions]
	}

	// Urgency and position depend on the dampened score and final rank, so
	// they are assigned after sorting.
	for i := range results {
		results[i].Urgency = deriveUrgency(results[i].Name, results[i].Probability, results[i].Confidence)
		results[i].Position = displayPosition(results[i].Name, i)
	}

	return &Output{Results: results, Warning: warning}, nil
}

// shouldDampen reports whether the vague-submission rule applies: at least
// two general symptom keywords in the text and a weak average confidence.
func shouldDampen(sanitizedText string, results []models.ConditionResult) bool {
	if len(results) == 0 {
		return false
	}

	lower := strings.ToLower(sanitizedText)
	hits := 0
	for _, kw := range generalSymptomKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits < 2 {
		return false
	}

	total := 0.0
	for _, r := range results {
		total += r.Confidence
	}
	return total/float64(len(results)) < 0.6
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
