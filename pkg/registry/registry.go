// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

// LoadRegistry reads a stage registry override from disk.
func LoadRegistry(path string) (*StageRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg StageRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Default returns the built-in registry matching the orchestrator's state
// machine and progress slices.
func Default() *StageRegistry {
	return &StageRegistry{
		Version: "1.0.0",
		Stages: []Stage{
			{
				ID:            "sanitizing",
				DisplayName:   "Sanitizing",
				Description:   "Combining documents and removing personal information",
				Status:        "sanitizing",
				ProgressStart: 10,
				ProgressEnd:   20,
				Degradable:    true,
			},
			{
				ID:            "researching",
				DisplayName:   "Identifying Conditions",
				Description:   "Searching for candidate conditions matching the symptoms",
				Status:        "researching",
				ProgressStart: 20,
				ProgressEnd:   40,
			},
			{
				ID:            "deep_research",
				DisplayName:   "Deep Research",
				Description:   "Gathering evidence for each candidate condition",
				Status:        "deep_research",
				ProgressStart: 40,
				ProgressEnd:   70,
				Degradable:    true,
			},
			{
				ID:            "debating",
				DisplayName:   "Weighing Evidence",
				Description:   "Assigning confidence to each condition",
				Status:        "debating",
				ProgressStart: 70,
				ProgressEnd:   85,
			},
			{
				ID:            "analyzing",
				DisplayName:   "Scoring",
				Description:   "Ranking conditions and deriving urgency",
				Status:        "analyzing",
				ProgressStart: 85,
				ProgressEnd:   90,
			},
			{
				ID:            "finding_clinics",
				DisplayName:   "Finding Clinics",
				Description:   "Locating nearby providers for the top condition",
				Status:        "finding_clinics",
				ProgressStart: 90,
				ProgressEnd:   100,
				Degradable:    true,
			},
		},
	}
}
