package model

import "time"

// Sub-vector lengths of a FeatureVector. Fixed so vectors built from
// different profiles are always comparable.
const (
	IndustryVectorLen   = 16
	SizeVectorLen       = 3
	NeedsVectorLen      = 64
	TechnicalVectorLen  = 4
	FinancialVectorLen  = 3
	ExperienceVectorLen = 2
)

// FeatureVector is the numeric representation of a Profile, one named
// sub-vector per scoring dimension. Built fresh per pipeline run and
// immutable once produced.
type FeatureVector struct {
	Industry   []float64
	Size       []float64
	Needs      []float64
	Technical  []float64
	Financial  []float64
	Experience []float64
}

// CategoryScores are the five bounded sub-scores for one (Profile, Candidate)
// pair. Every value lies in [0,1].
type CategoryScores struct {
	Industry   float64 `json:"industry"`
	Size       float64 `json:"size"`
	Needs      float64 `json:"needs"`
	Technical  float64 `json:"technical"`
	Historical float64 `json:"historical"`
}

// MatchResult is a scored, explained outcome of one comparison. Only
// materialized when the overall score clears the pipeline threshold;
// immutable after creation.
type MatchResult struct {
	CandidateID string         `json:"candidate_id"`
	Score       float64        `json:"score"` // weighted sum, 4 decimal places
	Categories  CategoryScores `json:"categories"`
	ReasonCodes []string       `json:"reason_codes"`
	Explanation string         `json:"explanation"`
	Actions     []string       `json:"actions"`
	Confidence  string         `json:"confidence"` // high/medium/low
}

// MatchJob is a queued request to run the pipeline for one profile.
type MatchJob struct {
	JobID      string
	ProfileID  string
	Reason     string // what triggered the run, e.g. "api", "candidate-change"
	EnqueuedAt time.Time
}
