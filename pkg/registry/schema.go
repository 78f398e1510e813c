// pkg/registry/schema.go
package registry

// StageRegistry describes the pipeline's stages for consumers that render
// progress (the polling frontend shows a label per stage).
type StageRegistry struct {
	Version string  `json:"version"`
	Stages  []Stage `json:"stages"`
}

type Stage struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	ProgressStart int    `json:"progressStart"`
	ProgressEnd   int    `json:"progressEnd"`
	Degradable    bool   `json:"degradable"`
}
