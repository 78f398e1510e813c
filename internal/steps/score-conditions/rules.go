// internal/steps/score-conditions/rules.go
package scoreconditions

import (
	"hash/fnv"
	"strings"

	"symptom-pipeline/internal/models"
)

// Display canvas dimensions for bubble placement.
const (
	canvasWidth  = 800
	canvasHeight = 600
)

// emergencyKeywords force urgency to emergency regardless of score.
var emergencyKeywords = []string{
	"stroke", "heart attack", "aneurysm", "sepsis", "meningitis",
}

// urgentKeywords mark conditions needing prompt attention.
var urgentKeywords = []string{
	"infection", "pneumonia", "acute", "severe",
}

// generalSymptomKeywords flag vague submissions for the dampening rule.
var generalSymptomKeywords = []string{
	"fatigue", "tired", "headache", "dizzy", "dizziness", "nausea",
	"weakness", "malaise",
}

// bodyRegions maps a condition-name keyword to an anatomical anchor on the
// display canvas. First matching keyword wins; lookup order is fixed.
var bodyRegionKeywords = []struct {
	keyword string
	pos     models.Position
}{
	{"migraine", models.Position{X: 400, Y: 80}},
	{"headache", models.Position{X: 400, Y: 80}},
	{"stroke", models.Position{X: 400, Y: 70}},
	{"meningitis", models.Position{X: 400, Y: 70}},
	{"thyroid", models.Position{X: 400, Y: 150}},
	{"throat", models.Position{X: 400, Y: 140}},
	{"heart", models.Position{X: 380, Y: 230}},
	{"cardiac", models.Position{X: 380, Y: 230}},
	{"pneumonia", models.Position{X: 420, Y: 220}},
	{"asthma", models.Position{X: 420, Y: 220}},
	{"bronch", models.Position{X: 420, Y: 220}},
	{"lung", models.Position{X: 420, Y: 220}},
	{"gastr", models.Position{X: 400, Y: 320}},
	{"stomach", models.Position{X: 400, Y: 320}},
	{"liver", models.Position{X: 360, Y: 310}},
	{"hepat", models.Position{X: 360, Y: 310}},
	{"kidney", models.Position{X: 450, Y: 330}},
	{"renal", models.Position{X: 450, Y: 330}},
	{"anemia", models.Position{X: 200, Y: 300}},
	{"diabetes", models.Position{X: 400, Y: 320}},
	{"arthritis", models.Position{X: 300, Y: 450}},
	{"joint", models.Position{X: 300, Y: 450}},
	{"derma", models.Position{X: 600, Y: 300}},
	{"skin", models.Position{X: 600, Y: 300}},
	{"eczema", models.Position{X: 600, Y: 300}},
}

// recommendedTestRules maps condition-name keywords to the diagnostic tests
// usually ordered first. First match wins.
var recommendedTestRules = []struct {
	keyword string
	tests   []string
}{
	{"anemia", []string{"Complete Blood Count (CBC)", "Iron Panel", "Ferritin"}},
	{"diabetes", []string{"HbA1c", "Fasting Glucose"}},
	{"thyroid", []string{"TSH", "Free T4"}},
	{"migraine", []string{"Neurological Exam"}},
	{"asthma", []string{"Spirometry", "Peak Flow Measurement"}},
	{"pneumonia", []string{"Chest X-ray", "Sputum Culture"}},
	{"infection", []string{"Complete Blood Count (CBC)", "Blood Culture"}},
	{"heart", []string{"ECG", "Troponin", "Echocardiogram"}},
	{"kidney", []string{"Creatinine", "eGFR", "Urinalysis"}},
	{"liver", []string{"Liver Function Panel"}},
	{"arthritis", []string{"Rheumatoid Factor", "ESR", "Joint X-ray"}},
}

// deriveUrgency applies the keyword rules, then the score-based floor.
func deriveUrgency(condition string, probability, confidence float64) string {
	lower := strings.ToLower(condition)

	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			return models.UrgencyEmergency
		}
	}
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return models.UrgencyUrgent
		}
	}
	if probability < 0.3 || confidence < 0.5 {
		return models.UrgencyMonitor
	}
	return models.UrgencyRoutine
}

// recommendedTests returns the test list for a condition, empty when no rule
// matches.
func recommendedTests(condition string) []string {
	lower := strings.ToLower(condition)
	for _, rule := range recommendedTestRules {
		if strings.Contains(lower, rule.keyword) {
			tests := make([]string, len(rule.tests))
			copy(tests, rule.tests)
			return tests
		}
	}
	return []string{}
}

// displayPosition computes a deterministic canvas coordinate from the
// condition's anatomical region (name hash when no region matches) plus a
// rank-based offset so stacked conditions fan out.
func displayPosition(condition string, rank int) models.Position {
	base, ok := regionFor(condition)
	if !ok {
		base = hashPosition(condition)
	}

	pos := models.Position{
		X: base.X + (rank%3-1)*60,
		Y: base.Y + (rank/3)*40,
	}
	return clampToCanvas(pos)
}

func regionFor(condition string) (models.Position, bool) {
	lower := strings.ToLower(condition)
	for _, region := range bodyRegionKeywords {
		if strings.Contains(lower, region.keyword) {
			return region.pos, true
		}
	}
	return models.Position{}, false
}

func hashPosition(condition string) models.Position {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(condition))))
	sum := h.Sum32()
	return models.Position{
		X: 100 + int(sum%600),
		Y: 100 + int((sum/600)%400),
	}
}

func clampToCanvas(pos models.Position) models.Position {
	if pos.X < 0 {
		pos.X = 0
	}
	if pos.X > canvasWidth {
		pos.X = canvasWidth
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	if pos.Y > canvasHeight {
		pos.Y = canvasHeight
	}
	return pos
}
