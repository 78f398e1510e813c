// internal/steps/score-conditions/models.go
package scoreconditions

import "symptom-pipeline/internal/models"

// Input carries the research findings with their debate confidences, aligned
// by index. SanitizedText is used for the vague-symptom dampening rule.
type Input struct {
	Findings      []models.ConditionFinding `json:"findings"`
	Confidences   []float64                 `json:"confidences"`
	SanitizedText string                    `json:"sanitizedText"`
}

type Output struct {
	Results []models.ConditionResult `json:"results"`
	Warning string                   `json:"warning,omitempty"`
}
