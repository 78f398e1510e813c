// internal/steps/forum-debate/config.go
package forumdebate

type Config struct {
	BaseConfidence     float64
	DegradedConfidence float64
}

func NewConfig() *Config {
	return &Config{
		BaseConfidence:     0.85,
		DegradedConfidence: 0.30,
	}
}
