// internal/steps/forum-debate/handler_test.go
package forumdebate

import (
	"context"
	"testing"

	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_ConstantConfidenceAssignment(t *testing.T) {
	handler := NewHandler(NewConfig(), logger.NewNop())

	output, err := handler.Execute(context.Background(), &Input{
		Findings: []models.ConditionFinding{
			{Condition: "Anemia", Evidence: "strong evidence"},
			{Condition: "Hypothyroidism", Evidence: "some evidence"},
		},
	})
	require.NoError(t, err)
	require.Len(t, output.Assessments, 2)
	for i, a := range output.Assessments {
		assert.InDelta(t, 0.85, a.Confidence, 0.0001)
		assert.Equal(t, output.Assessments[i].Condition, a.Condition)
	}
	assert.Equal(t, "Anemia", output.Assessments[0].Condition)
	assert.Equal(t, "Hypothyroidism", output.Assessments[1].Condition)
}

func TestExecute_DegradedFindingsGetLowConfidence(t *testing.T) {
	handler := NewHandler(NewConfig(), logger.NewNop())

	output, err := handler.Execute(context.Background(), &Input{
		Findings: []models.ConditionFinding{
			{Condition: "Anemia", Evidence: "evidence"},
			{Condition: "Diabetes", Degraded: true},
			{Condition: "Asthma", Evidence: ""},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.85, output.Assessments[0].Confidence, 0.0001)
	assert.InDelta(t, 0.30, output.Assessments[1].Confidence, 0.0001)
	assert.InDelta(t, 0.30, output.Assessments[2].Confidence, 0.0001)
}

func TestExecute_ConfidenceClampedToUnitInterval(t *testing.T) {
	handler := NewHandler(&Config{BaseConfidence: 1.7, DegradedConfidence: -0.2}, logger.NewNop())

	output, err := handler.Execute(context.Background(), &Input{
		Findings: []models.ConditionFinding{
			{Condition: "A", Evidence: "evidence"},
			{Condition: "B", Degraded: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, output.Assessments[0].Confidence)
	assert.Equal(t, 0.0, output.Assessments[1].Confidence)
}

func TestExecute_EmptyInput(t *testing.T) {
	handler := NewHandler(NewConfig(), logger.NewNop())

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Empty(t, output.Assessments)
}
