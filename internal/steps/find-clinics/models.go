// internal/steps/find-clinics/models.go
package findclinics

import "symptom-pipeline/internal/models"

type Input struct {
	Location  models.Location `json:"location"`
	Specialty string          `json:"specialty"`
}

type Output struct {
	Clinics []models.ClinicResult `json:"clinics"`
}
