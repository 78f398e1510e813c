// internal/steps/extract-documents/handler_test.go
package extractdocuments

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"

	"symptom-pipeline/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	return NewHandler(NewConfig(), logger.NewNop())
}

func TestExecute_NoDocuments(t *testing.T) {
	handler := newTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		Symptoms: "  persistent cough and night sweats  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "persistent cough and night sweats", output.CombinedText)
	assert.Equal(t, 0, output.DocumentCount)
	assert.NotContains(t, output.CombinedText, documentsDelimiter)
}

func TestExecute_PlainTextDocument(t *testing.T) {
	handler := newTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		Symptoms:  "persistent cough",
		Documents: []string{"Lab report: hemoglobin 9.2 g/dL, below normal range"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.DocumentCount)
	assert.Contains(t, output.CombinedText, documentsDelimiter)
	assert.Contains(t, output.CombinedText, "=== Document 1 ===")
	assert.Contains(t, output.CombinedText, "hemoglobin 9.2")
}

func TestExecute_Base64Document(t *testing.T) {
	handler := newTestHandler()

	encoded := base64.StdEncoding.EncodeToString([]byte("X-ray: no acute findings"))
	output, err := handler.Execute(context.Background(), &Input{
		Symptoms:  "chest pain",
		Documents: []string{encoded},
	})
	require.NoError(t, err)
	assert.Contains(t, output.CombinedText, "X-ray: no acute findings")
	assert.NotContains(t, output.CombinedText, encoded)
}

func TestExecute_MixedDocumentsKeepNumbering(t *testing.T) {
	handler := newTestHandler()

	encoded := base64.StdEncoding.EncodeToString([]byte("CBC: WBC elevated"))
	output, err := handler.Execute(context.Background(), &Input{
		Symptoms:  "fever",
		Documents: []string{"Discharge summary: admitted overnight", encoded},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, output.DocumentCount)
	assert.Contains(t, output.CombinedText, "=== Document 1 ===\nDischarge summary")
	assert.Contains(t, output.CombinedText, "=== Document 2 ===\nCBC: WBC elevated")
}

func TestExecute_EmptyDocumentsSkipped(t *testing.T) {
	handler := newTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		Symptoms:  "headache",
		Documents: []string{"", "   ", "MRI scheduled for next week"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.DocumentCount)
}

func TestExecute_DocumentCountLimit(t *testing.T) {
	handler := newTestHandler()

	docs := make([]string, 8)
	for i := range docs {
		docs[i] = "note: patient stable"
	}

	output, err := handler.Execute(context.Background(), &Input{
		Symptoms:  "dizziness",
		Documents: docs,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, output.DocumentCount)
}

func TestExecute_OversizedDocumentTruncated(t *testing.T) {
	handler := newTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		Symptoms:  "fatigue",
		Documents: []string{strings.Repeat("x", 20000)},
	})
	require.NoError(t, err)
	assert.Less(t, len(output.CombinedText), 12000)
}

func TestExecute_TruncationKeepsValidUTF8(t *testing.T) {
	handler := NewHandler(&Config{MaxDocuments: 5, MaxDocumentChars: 10}, logger.NewNop())

	// The three-byte rune straddles the 10-byte cap and must be dropped whole.
	output, err := handler.Execute(context.Background(), &Input{
		Symptoms:  "fatigue",
		Documents: []string{"aaaaaaaaa世界"},
	})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(output.CombinedText))
	assert.Contains(t, output.CombinedText, "=== Document 1 ===\naaaaaaaaa")
	assert.NotContains(t, output.CombinedText, "世")
}

func TestTruncateOnRuneBoundary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		max      int
		expected string
	}{
		{"ascii exact fit", "abcdef", 4, "abcd"},
		{"cut lands mid-rune", "abécd", 3, "ab"},
		{"cut lands on rune start", "abécd", 4, "abé"},
		{"all multibyte", "世界", 4, "世"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateOnRuneBoundary(tt.text, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestDecodeDocument_InvalidBase64PassedThrough(t *testing.T) {
	raw := "not base64!!! but still a valid note"
	assert.Equal(t, raw, decodeDocument(raw))
}
