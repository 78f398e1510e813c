// internal/steps/extract-documents/config.go
package extractdocuments

type Config struct {
	MaxDocuments     int
	MaxDocumentChars int
}

func NewConfig() *Config {
	return &Config{
		MaxDocuments:     5,
		MaxDocumentChars: 10000,
	}
}
