// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAnalyzeRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		valid   bool
	}{
		{
			name: "minimal valid request",
			payload: map[string]interface{}{
				"symptoms": "persistent fatigue and dizziness",
			},
			valid: true,
		},
		{
			name: "full valid request",
			payload: map[string]interface{}{
				"symptoms":    "persistent fatigue and dizziness",
				"patient_age": float64(35),
				"patient_sex": "female",
				"documents":   []interface{}{"bGFiIHJlcG9ydA=="},
				"location": map[string]interface{}{
					"latitude":  37.7749,
					"longitude": -122.4194,
				},
			},
			valid: true,
		},
		{
			name:    "missing symptoms",
			payload: map[string]interface{}{"documents": []interface{}{}},
			valid:   false,
		},
		{
			name: "negative patient age",
			payload: map[string]interface{}{
				"symptoms":    "persistent fatigue",
				"patient_age": float64(-3),
			},
			valid: false,
		},
		{
			name: "zero patient age",
			payload: map[string]interface{}{
				"symptoms":    "persistent fatigue",
				"patient_age": float64(0),
			},
			valid: false,
		},
		{
			name: "implausibly large patient age",
			payload: map[string]interface{}{
				"symptoms":    "persistent fatigue",
				"patient_age": float64(200),
			},
			valid: false,
		},
		{
			name: "fractional patient age",
			payload: map[string]interface{}{
				"symptoms":    "persistent fatigue",
				"patient_age": 35.5,
			},
			valid: false,
		},
		{
			name: "unknown patient sex value",
			payload: map[string]interface{}{
				"symptoms":    "persistent fatigue",
				"patient_sex": "yes",
			},
			valid: false,
		},
		{
			name: "non-string patient sex",
			payload: map[string]interface{}{
				"symptoms":    "persistent fatigue",
				"patient_sex": float64(1),
			},
			valid: false,
		},
		{
			name: "out-of-range latitude",
			payload: map[string]interface{}{
				"symptoms": "persistent fatigue",
				"location": map[string]interface{}{
					"latitude":  120.0,
					"longitude": 0.0,
				},
			},
			valid: false,
		},
		{
			name: "non-string document entry",
			payload: map[string]interface{}{
				"symptoms":  "persistent fatigue",
				"documents": []interface{}{float64(42)},
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalyzeRequest(tt.payload)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
