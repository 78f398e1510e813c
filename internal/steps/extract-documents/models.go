// internal/steps/extract-documents/models.go
package extractdocuments

type Input struct {
	Symptoms  string   `json:"symptoms"`
	Documents []string `json:"documents"`
}

type Output struct {
	CombinedText  string `json:"combinedText"`
	DocumentCount int    `json:"documentCount"`
}
