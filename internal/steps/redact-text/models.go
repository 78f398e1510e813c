// internal/steps/redact-text/models.go
package redacttext

type Input struct {
	Text string `json:"text"`
}

type Output struct {
	SanitizedText string `json:"sanitizedText"`
	Redactions    int    `json:"redactions"`
	UsedFallback  bool   `json:"usedFallback"`
}
