// Package validation validates inbound analysis requests against a JSON
// schema before they reach the pipeline.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// analyzeRequestSchema is the contract for POST /api/analyze payloads. The
// minLength on symptoms is a floor only; the configured minimum symptom
// length is enforced separately by the API layer.
var analyzeRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"symptoms": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"patient_age": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": 120,
		},
		"patient_sex": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"male", "female", "other"},
		},
		"documents": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
			},
		},
		"location": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"latitude":  map[string]interface{}{"type": "number", "minimum": -90, "maximum": 90},
				"longitude": map[string]interface{}{"type": "number", "minimum": -180, "maximum": 180},
				"city":      map[string]interface{}{"type": "string"},
				"region":    map[string]interface{}{"type": "string"},
				"country":   map[string]interface{}{"type": "string"},
			},
		},
	},
	"required":             []interface{}{"symptoms"},
	"additionalProperties": true,
}

// ValidateAnalyzeRequest checks a decoded request body against the analyze
// schema. Returns nil when the payload is valid.
func ValidateAnalyzeRequest(payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(analyzeRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var details []string
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("invalid request: %s", strings.Join(details, "; "))
	}

	return nil
}
