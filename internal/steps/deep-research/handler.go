// internal/steps/deep-research/handler.go
package deepresearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"sync"

	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/models"
)

const (
	StepName = "deep-research"
)

var (
	ErrResearchTimeout = errors.New("RESEARCH_TIMEOUT")

	// percentPattern pulls a probability signal like "roughly 65% of cases"
	// out of free-form evidence text when the API returns no numeric field.
	percentPattern = regexp.MustCompile(`(\d{1,3})\s*%`)
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

// Execute researches every candidate condition and returns one finding per
// input, order preserved.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.ExecuteBatches(ctx, input, nil)
}

// ExecuteBatches partitions the conditions into fixed-width batches; lookups
// within a batch run concurrently and the next batch starts only after the
// whole batch settles, bounding outstanding calls to the batch width. A
// failed or timed-out lookup yields a degraded finding in its slot, never an
// error. The progress callback, when non-nil, fires after each batch.
func (h *Handler) ExecuteBatches(ctx context.Context, input *Input, progress func(done, total int)) (*Output, error) {
	total := len(input.Conditions)
	findings := make([]models.ConditionFinding, total)

	width := h.config.BatchWidth
	if width < 1 {
		width = 1
	}

	for start := 0; start < total; start += width {
		end := start + width
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				findings[idx] = h.researchOne(ctx, input.Conditions[idx], input.SanitizedText)
			}(i)
		}
		wg.Wait()

		if progress != nil {
			progress(end, total)
		}
	}

	return &Output{Findings: findings}, nil
}

// researchOne performs a single lookup, degrading on any failure.
func (h *Handler) researchOne(ctx context.Context, condition, text string) models.ConditionFinding {
	itemCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	evidence, signal, err := h.callResearch(itemCtx, condition, text)
	if err != nil {
		h.logger.Warn("research lookup degraded", map[string]interface{}{
			"condition": condition,
			"error":     err.Error(),
		})
		return models.ConditionFinding{Condition: condition, Degraded: true}
	}

	if signal == nil {
		signal = extractProbabilitySignal(evidence)
	}

	return models.ConditionFinding{
		Condition:         condition,
		Evidence:          evidence,
		ProbabilitySignal: signal,
	}
}

func (h *Handler) callResearch(ctx context.Context, condition, text string) (string, *float64, error) {
	body, err := json.Marshal(map[string]string{
		"condition": condition,
		"context":   text,
	})
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.config.ResearchBaseURL+"/v1/research", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.config.ResearchAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.ResearchAPIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", nil, ErrResearchTimeout
		}
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("research API returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Evidence    string   `json:"evidence"`
		Probability *float64 `json:"probability"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", nil, err
	}

	return apiResponse.Evidence, apiResponse.Probability, nil
}

// extractProbabilitySignal scans evidence text for the first percentage
// mention and converts it to a [0,1] value. Returns nil when nothing usable
// is found.
func extractProbabilitySignal(evidence string) *float64 {
	match := percentPattern.FindStringSubmatch(evidence)
	if match == nil {
		return nil
	}

	pct, err := strconv.Atoi(match[1])
	if err != nil || pct > 100 {
		return nil
	}

	value := float64(pct) / 100.0
	return &value
}
