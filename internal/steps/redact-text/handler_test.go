// internal/steps/redact-text/handler_test.go
package redacttext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"symptom-pipeline/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(baseURL string) *Config {
	return &Config{
		SanitizerBaseURL: baseURL,
		SanitizerAPIKey:  "test-key",
		Timeout:          2 * time.Second,
	}
}

func newLocalHandler() *Handler {
	// Empty base URL forces the local fallback path.
	return NewHandler(createTestConfig(""), logger.NewNop())
}

// ==========================
// Local Redaction Tests
// ==========================

func TestLocalRedact_Categories(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "ssn",
			input:    "my ssn is 123-45-6789 for reference",
			expected: "my ssn is [SSN_REDACTED] for reference",
		},
		{
			name:     "email",
			input:    "contact me at jane.doe+health@example.org please",
			expected: "contact me at [EMAIL_REDACTED] please",
		},
		{
			name:     "dob iso",
			input:    "born 1988-04-12, symptoms started last week",
			expected: "born [DOB_REDACTED], symptoms started last week",
		},
		{
			name:     "dob us",
			input:    "DOB 4/12/1988 per chart",
			expected: "DOB [DOB_REDACTED] per chart",
		},
		{
			name:     "mrn labelled",
			input:    "patient MRN: 12345678 admitted yesterday",
			expected: "patient [MRN_REDACTED] admitted yesterday",
		},
		{
			name:     "phone full",
			input:    "call (555) 123-4567 after 5pm",
			expected: "call [PHONE_REDACTED] after 5pm",
		},
		{
			name:     "phone short local",
			input:    "reach the front desk at 555-1234",
			expected: "reach the front desk at [PHONE_REDACTED]",
		},
		{
			name:     "multiple categories in one text",
			input:    "SSN 123-45-6789, email a@b.com, phone 555-867-5309",
			expected: "SSN [SSN_REDACTED], email [EMAIL_REDACTED], phone [PHONE_REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := localRedact(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Greater(t, count, 0)
		})
	}
}

func TestLocalRedact_NoFalsePositivesOnClinicalText(t *testing.T) {
	inputs := []string{
		"blood pressure 120/80, temperature 98.6, taking 500mg ibuprofen twice daily",
		"persistent fatigue for 3-4 days, O2 saturation 95%",
		"heart rate was 102 bpm during the episode",
	}

	for _, input := range inputs {
		got, count := localRedact(input)
		assert.Equal(t, input, got)
		assert.Equal(t, 0, count)
	}
}

func TestLocalRedact_Idempotent(t *testing.T) {
	input := "SSN 123-45-6789, DOB 1990-01-15, call 555-123-4567 or mail x@y.io"

	once, _ := localRedact(input)
	twice, count := localRedact(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, 0, count)
}

func TestLocalRedact_EmptyAndMalformedInput(t *testing.T) {
	got, count := localRedact("")
	assert.Equal(t, "", got)
	assert.Equal(t, 0, count)

	weird := "\x00\xff ---- 12- -45 @@ http://"
	got, _ = localRedact(weird)
	assert.Equal(t, weird, got)
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_LocalFallbackWhenUnconfigured(t *testing.T) {
	handler := newLocalHandler()

	output, err := handler.Execute(context.Background(), &Input{
		Text: "chest pain, email me at pt@example.com",
	})
	require.NoError(t, err)
	assert.True(t, output.UsedFallback)
	assert.Equal(t, "chest pain, email me at [EMAIL_REDACTED]", output.SanitizedText)
	assert.Equal(t, 1, output.Redactions)
}

func TestExecute_ExternalSanitizerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/redact", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sanitized_text": "headache since [DOB_REDACTED]"}`))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), logger.NewNop())

	output, err := handler.Execute(context.Background(), &Input{Text: "headache since 1990-01-15"})
	require.NoError(t, err)
	assert.False(t, output.UsedFallback)
	assert.Equal(t, "headache since [DOB_REDACTED]", output.SanitizedText)
}

func TestExecute_ExternalFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), logger.NewNop())

	output, err := handler.Execute(context.Background(), &Input{Text: "dizzy spells, SSN 123-45-6789"})
	require.NoError(t, err)
	assert.True(t, output.UsedFallback)
	assert.Equal(t, "dizzy spells, SSN [SSN_REDACTED]", output.SanitizedText)
}

func TestExecute_ExternalTimeoutFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	handler := NewHandler(cfg, logger.NewNop())

	output, err := handler.Execute(context.Background(), &Input{Text: "fever and chills, call 555-1234"})
	require.NoError(t, err)
	assert.True(t, output.UsedFallback)
	assert.Contains(t, output.SanitizedText, "[PHONE_REDACTED]")
}

// ==========================
// Benchmark
// ==========================

func BenchmarkLocalRedact(b *testing.B) {
	text := strings.Repeat("symptoms since 1990-01-15, contact jane@example.com or 555-123-4567. ", 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		localRedact(text)
	}
}
