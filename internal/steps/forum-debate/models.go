// internal/steps/forum-debate/models.go
package forumdebate

import "symptom-pipeline/internal/models"

type Input struct {
	Findings []models.ConditionFinding `json:"findings"`
}

type Output struct {
	Assessments []Assessment `json:"assessments"`
}

// Assessment carries the per-condition confidence produced by the debate
// pass. Same cardinality and order as the input findings.
type Assessment struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
}
