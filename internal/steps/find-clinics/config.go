// internal/steps/find-clinics/config.go
package findclinics

import (
	"time"

	"symptom-pipeline/internal/common/config"
)

type Config struct {
	ClinicsBaseURL string
	ClinicsAPIKey  string
	Timeout        time.Duration
	MaxClinics     int
	MinRating      float64
}

func NewConfig(svc config.ServiceEndpoint, pipeline config.PipelineConfig) *Config {
	return &Config{
		ClinicsBaseURL: svc.BaseURL,
		ClinicsAPIKey:  svc.APIKey,
		Timeout:        svc.TimeoutDuration(),
		MaxClinics:     pipeline.MaxClinics,
		MinRating:      pipeline.MinClinicRating,
	}
}
