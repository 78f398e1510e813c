// internal/steps/resolve-location/config.go
package resolvelocation

import (
	"time"

	"symptom-pipeline/internal/common/config"
	"symptom-pipeline/internal/models"
)

type Config struct {
	LookupBaseURL string
	LookupAPIKey  string
	Timeout       time.Duration
	Default       models.Location
}

func NewConfig(svc config.ServiceEndpoint) *Config {
	return &Config{
		LookupBaseURL: svc.BaseURL,
		LookupAPIKey:  svc.APIKey,
		Timeout:       svc.TimeoutDuration(),
		Default: models.Location{
			Latitude:  37.7749,
			Longitude: -122.4194,
			City:      "San Francisco",
			Region:    "CA",
			Country:   "US",
		},
	}
}
