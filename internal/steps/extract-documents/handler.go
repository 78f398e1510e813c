// internal/steps/extract-documents/handler.go
package extractdocuments

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"symptom-pipeline/internal/common/logger"
)

const (
	StepName = "extract-documents"

	documentsDelimiter = "--- Medical Documents ---"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"step": StepName,
		}),
	}
}

// Execute combines symptom text with any uploaded document blobs. Documents
// may arrive as base64 or plain text; undecodable blobs are passed through
// as-is rather than dropped.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	symptoms := strings.TrimSpace(input.Symptoms)

	docs := input.Documents
	if len(docs) > h.config.MaxDocuments {
		h.logger.Warn("document count exceeds limit, truncating", map[string]interface{}{
			"provided": len(docs),
			"limit":    h.config.MaxDocuments,
		})
		docs = docs[:h.config.MaxDocuments]
	}

	var sections []string
	for i, doc := range docs {
		text := strings.TrimSpace(decodeDocument(doc))
		if text == "" {
			continue
		}
		if len(text) > h.config.MaxDocumentChars {
			text = truncateOnRuneBoundary(text, h.config.MaxDocumentChars)
		}
		sections = append(sections, fmt.Sprintf("=== Document %d ===\n%s", i+1, text))
	}

	if len(sections) == 0 {
		return &Output{CombinedText: symptoms, DocumentCount: 0}, nil
	}

	combined := symptoms + "\n\n" + documentsDelimiter + "\n" + strings.Join(sections, "\n\n")
	return &Output{CombinedText: combined, DocumentCount: len(sections)}, nil
}

// truncateOnRuneBoundary cuts text to at most max bytes without splitting a
// multi-byte rune at the cap.
func truncateOnRuneBoundary(text string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// decodeDocument tries base64 first and falls back to treating the blob as
// plain text. Short plain strings can accidentally be valid base64, so the
// decoded bytes must also be valid UTF-8 to be accepted.
func decodeDocument(doc string) string {
	trimmed := strings.TrimSpace(doc)
	if trimmed == "" {
		return ""
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err == nil && utf8.Valid(decoded) {
		return string(decoded)
	}

	return trimmed
}
