// internal/steps/redact-text/handler.go
package redacttext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"symptom-pipeline/internal/common/logger"
)

const (
	StepName = "redact-text"
)

var (
	ErrSanitizerTimeout = errors.New("SANITIZER_TIMEOUT")
)

// redactionRule is one pattern-to-placeholder substitution. Rules are applied
// in order: IDs and dates first so their digit groups are consumed before the
// looser phone patterns run.
type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var redactionRules = []redactionRule{
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN_REDACTED]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL_REDACTED]"},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "[DOB_REDACTED]"},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), "[DOB_REDACTED]"},
	{regexp.MustCompile(`(?i)\bMRN[:#\s]?\s*\d{5,10}\b`), "[MRN_REDACTED]"},
	{regexp.MustCompile(`(?:\+?1[-.\s]?)?(?:\(\d{3}\)|\b\d{3})[-.\s]\d{3}[-.\s]?\d{4}\b`), "[PHONE_REDACTED]"},
	{regexp.MustCompile(`\b\d{3}[-.]\d{4}\b`), "[PHONE_REDACTED]"},
}

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

// Execute sanitizes the combined symptom/document text. The external
// sanitizer is tried first; any failure falls through to local pattern
// matching. This step never returns an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.config.SanitizerBaseURL != "" {
		sanitized, err := h.callSanitizer(ctx, input.Text)
		if err == nil {
			return &Output{SanitizedText: sanitized, UsedFallback: false}, nil
		}

		h.logger.Warn("external sanitizer failed, using local redaction", map[string]interface{}{
			"error": err.Error(),
		})
	}

	sanitized, count := localRedact(input.Text)
	return &Output{
		SanitizedText: sanitized,
		Redactions:    count,
		UsedFallback:  true,
	}, nil
}

func (h *Handler) callSanitizer(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.config.SanitizerBaseURL+"/v1/redact", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.config.SanitizerAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.SanitizerAPIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return "", ErrSanitizerTimeout
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sanitizer returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		SanitizedText string `json:"sanitized_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", err
	}
	if apiResponse.SanitizedText == "" {
		return "", fmt.Errorf("sanitizer returned empty text")
	}

	return apiResponse.SanitizedText, nil
}

// localRedact applies the pattern rules in order and returns the sanitized
// text with the total replacement count. Placeholder tokens contain no
// digits, so reapplying the rules is a no-op.
func localRedact(text string) (string, int) {
	count := 0
	for _, rule := range redactionRules {
		matches := rule.pattern.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		count += len(matches)
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text, count
}
