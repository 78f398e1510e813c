// internal/steps/deep-research/models.go
package deepresearch

import "symptom-pipeline/internal/models"

type Input struct {
	Conditions    []string `json:"conditions"`
	SanitizedText string   `json:"sanitizedText"`
}

type Output struct {
	Findings []models.ConditionFinding `json:"findings"`
}
