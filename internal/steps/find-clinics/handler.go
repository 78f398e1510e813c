// internal/steps/find-clinics/handler.go
package findclinics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/models"
)

const (
	StepName = "find-clinics"
)

// specialtyRules maps condition-name keywords to the referring specialty.
// First match wins; unmatched conditions get a general practice referral.
var specialtyRules = []struct {
	keyword   string
	specialty string
}{
	{"anemia", "Hematology"},
	{"diabetes", "Endocrinology"},
	{"thyroid", "Endocrinology"},
	{"heart", "Cardiology"},
	{"cardiac", "Cardiology"},
	{"pneumonia", "Pulmonology"},
	{"asthma", "Pulmonology"},
	{"lung", "Pulmonology"},
	{"migraine", "Neurology"},
	{"stroke", "Neurology"},
	{"meningitis", "Neurology"},
	{"skin", "Dermatology"},
	{"derma", "Dermatology"},
	{"eczema", "Dermatology"},
	{"arthritis", "Rheumatology"},
	{"joint", "Rheumatology"},
	{"kidney", "Nephrology"},
	{"renal", "Nephrology"},
	{"liver", "Gastroenterology"},
	{"gastr", "Gastroenterology"},
	{"stomach", "Gastroenterology"},
}

const defaultSpecialty = "General Practice"

type Handler struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"step": StepName,
		}),
	}
}

// Execute finds nearby providers for the resolved location and specialty.
// An empty list is a valid result; collaborator failures also degrade to an
// empty list so a completed analysis is never blocked on clinic data.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.config.ClinicsBaseURL == "" {
		return &Output{Clinics: []models.ClinicResult{}}, nil
	}

	clinics, err := h.search(ctx, input)
	if err != nil {
		h.logger.Warn("clinic lookup failed, returning empty list", map[string]interface{}{
			"specialty": input.Specialty,
			"error":     err.Error(),
		})
		return &Output{Clinics: []models.ClinicResult{}}, nil
	}

	return &Output{Clinics: h.rankClinics(clinics)}, nil
}

func (h *Handler) search(ctx context.Context, input *Input) ([]models.ClinicResult, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.4f", input.Location.Latitude))
	query.Set("lon", fmt.Sprintf("%.4f", input.Location.Longitude))
	query.Set("specialty", input.Specialty)

	searchURL := h.config.ClinicsBaseURL + "/v1/clinics/search?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, err
	}
	if h.config.ClinicsAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.ClinicsAPIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clinic API returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Clinics []models.ClinicResult `json:"clinics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, err
	}

	return apiResponse.Clinics, nil
}

// rankClinics drops low-rated entries, sorts by distance ascending with
// rating descending as tiebreak, and truncates to the configured maximum.
func (h *Handler) rankClinics(clinics []models.ClinicResult) []models.ClinicResult {
	filtered := make([]models.ClinicResult, 0, len(clinics))
	for _, c := range clinics {
		if c.Rating >= h.config.MinRating {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].DistanceKm != filtered[j].DistanceKm {
			return filtered[i].DistanceKm < filtered[j].DistanceKm
		}
		return filtered[i].Rating > filtered[j].Rating
	})

	if len(filtered) > h.config.MaxClinics {
		filtered = filtered[:h.config.MaxClinics]
	}

	return filtered
}

// SpecialtyForCondition derives the clinic specialty hint from the top-ranked
// condition name.
func SpecialtyForCondition(condition string) string {
	lower := strings.ToLower(condition)
	for _, rule := range specialtyRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.specialty
		}
	}
	return defaultSpecialty
}
