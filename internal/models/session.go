package models

import "time"

// Status is the session state-machine value. Transitions are strictly
// sequential and forward-only; failed is reachable from any non-terminal
// state.
type Status string

const (
	StatusInitializing   Status = "initializing"
	StatusSanitizing     Status = "sanitizing"
	StatusResearching    Status = "researching"
	StatusDeepResearch   Status = "deep_research"
	StatusDebating       Status = "debating"
	StatusAnalyzing      Status = "analyzing"
	StatusFindingClinics Status = "finding_clinics"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session is the per-analysis state persisted in the session store. The
// orchestrator is the single writer while a run is in flight; the poll
// endpoint only reads.
type Session struct {
	ID        string          `json:"session_id"`
	Status    Status          `json:"status"`
	Progress  int             `json:"progress"`
	Error     string          `json:"error,omitempty"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SessionUpdate is a partial delta merged into a stored session. Nil fields
// are left untouched.
type SessionUpdate struct {
	Status   *Status         `json:"status,omitempty"`
	Progress *int            `json:"progress,omitempty"`
	Error    *string         `json:"error,omitempty"`
	Result   *AnalysisResult `json:"result,omitempty"`
}
