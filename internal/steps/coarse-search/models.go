// internal/steps/coarse-search/models.go
package coarsesearch

type Input struct {
	SanitizedText string `json:"sanitizedText"`
	PatientAge    *int   `json:"patientAge,omitempty"`
	PatientSex    string `json:"patientSex,omitempty"`
}

type Output struct {
	Conditions []string `json:"conditions"`
}

// candidate is the raw API shape before dedupe/rank/truncate.
type candidate struct {
	Name      string  `json:"name"`
	Relevance float64 `json:"relevance"`
}
