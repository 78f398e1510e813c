// internal/steps/coarse-search/handler.go
package coarsesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"symptom-pipeline/internal/common/logger"
)

const (
	StepName = "coarse-search"
)

var (
	ErrCoarseSearchTimeout = errors.New("COARSE_SEARCH_TIMEOUT")
)

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

// Execute asks the reasoning service for candidate conditions matching the
// sanitized text. There is no fallback for this step: errors propagate and
// fail the run.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	candidates, err := h.search(ctx, input)
	if err != nil {
		return nil, err
	}

	conditions := rankConditions(candidates, h.config.MaxConditions)

	h.logger.Info("coarse search completed", map[string]interface{}{
		"rawCount":   len(candidates),
		"finalCount": len(conditions),
	})

	return &Output{Conditions: conditions}, nil
}

func (h *Handler) search(ctx context.Context, input *Input) ([]candidate, error) {
	payload := map[string]interface{}{"text": input.SanitizedText}
	if input.PatientAge != nil {
		payload["patient_age"] = *input.PatientAge
	}
	if input.PatientSex != "" {
		payload["patient_sex"] = input.PatientSex
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.config.ReasoningBaseURL+"/v1/conditions/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.config.ReasoningAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.ReasoningAPIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, ErrCoarseSearchTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reasoning API returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Conditions []candidate `json:"conditions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, err
	}

	return apiResponse.Conditions, nil
}

// rankConditions dedupes case-insensitively (first occurrence wins), sorts by
// descending relevance with original order breaking ties, and truncates to
// the configured maximum.
func rankConditions(candidates []candidate, max int) []string {
	seen := make(map[string]bool, len(candidates))
	unique := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, candidate{Name: name, Relevance: c.Relevance})
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Relevance > unique[j].Relevance
	})

	if len(unique) > max {
		unique = unique[:max]
	}

	names := make([]string, len(unique))
	for i, c := range unique {
		names[i] = c.Name
	}
	return names
}
