// Package models holds the shared data types that flow between pipeline
// steps, the session store, and the HTTP API.
package models

// ==========================
// 1. Request Types
// ==========================

// AnalysisRequest is the decoded body of a symptom submission.
type AnalysisRequest struct {
	Symptoms   string    `json:"symptoms"`
	PatientAge *int      `json:"patient_age,omitempty"`
	PatientSex string    `json:"patient_sex,omitempty"`
	Documents  []string  `json:"documents,omitempty"`
	Location   *Location `json:"location,omitempty"`
	ClientIP   string    `json:"-"`
}

// Location is a coarse geographic position resolved from request metadata.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// ==========================
// 2. Pipeline Intermediates
// ==========================

// ConditionFinding is the raw deep-research output for a single candidate
// condition. ProbabilitySignal is nil when no signal was extracted.
type ConditionFinding struct {
	Condition         string   `json:"condition"`
	Evidence          string   `json:"evidence"`
	ProbabilitySignal *float64 `json:"probability_signal,omitempty"`
	Degraded          bool     `json:"degraded"`
}

// ==========================
// 3. Result Types
// ==========================

// Urgency levels for a condition, ordered from least to most pressing.
const (
	UrgencyRoutine   = "routine"
	UrgencyMonitor   = "monitor"
	UrgencyUrgent    = "urgent"
	UrgencyEmergency = "emergency"
)

// Position is a deterministic 2-D display coordinate for bubble placement.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ConditionResult is the externally visible scored record for one condition.
type ConditionResult struct {
	Name             string   `json:"name"`
	Probability      float64  `json:"probability"`
	Confidence       float64  `json:"confidence"`
	Urgency          string   `json:"urgency"`
	Evidence         string   `json:"evidence"`
	RecommendedTests []string `json:"recommended_tests"`
	Position         Position `json:"position"`
}

// ClinicResult describes one nearby provider. DoctorName and Phone are
// privacy-sensitive and are rendered obscured by the consumer.
type ClinicResult struct {
	Name          string  `json:"name"`
	DoctorName    string  `json:"doctor_name"`
	Specialty     string  `json:"specialty"`
	Address       string  `json:"address"`
	DistanceKm    float64 `json:"distance_km"`
	Phone         string  `json:"phone"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"review_count"`
	Website       string  `json:"website,omitempty"`
	NextAvailable string  `json:"next_available,omitempty"`
}

// AnalysisResult is the final payload returned to the poller once a session
// completes. Conditions are ordered by descending probability.
type AnalysisResult struct {
	Warning    string            `json:"warning,omitempty"`
	Conditions []ConditionResult `json:"conditions"`
	Clinics    []ClinicResult    `json:"clinics"`
}
