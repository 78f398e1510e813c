// internal/steps/resolve-location/models.go
package resolvelocation

import "symptom-pipeline/internal/models"

type Input struct {
	ClientIP string           `json:"clientIp"`
	Provided *models.Location `json:"provided,omitempty"`
}

type Output struct {
	Location    models.Location `json:"location"`
	UsedDefault bool            `json:"usedDefault"`
}
