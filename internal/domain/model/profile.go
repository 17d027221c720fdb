// Package model contains domain models passed between layers.
package model

import "time"

// Profile is the organization being matched against candidates.
// Owned by the external catalog; read-only inside the matching core.
type Profile struct {
	ID             string
	OrganizationID string
	Name           string
	IndustryCode   string // statistical activity code, e.g. "39"
	Employees      int
	AnnualRevenue  float64 // EUR
	Needs          string  // free-text description of what the org is looking for
	Maturity       TechnicalMaturity
	Financial      Financials
	History        OutcomeHistory
}

// TechnicalMaturity holds normalized maturity components, each in [0,1].
type TechnicalMaturity struct {
	Digitalization float64
	Tooling        float64
	Automation     float64
	ITStaffing     float64
}

// Financials holds normalized financial health indicators.
type Financials struct {
	ProfitMargin float64
	Liquidity    float64
}

// OutcomeHistory summarizes prior funding applications, each component in [0,1].
type OutcomeHistory struct {
	PriorSuccess          float64 // share of similar applications granted
	ApplicationExperience float64 // general application track record
}

// Candidate is a subsidy/grant opportunity eligible for matching.
// Read-only inside the matching core.
type Candidate struct {
	ID                    string
	Title                 string
	Description           string
	Keywords              []string
	TargetIndustries      []string // empty means no industry restriction
	TargetCompanySizes    []string // "small"/"medium"/"large"; empty means unrestricted
	TechnicalRequirements []string
	MinAmount             float64
	MaxAmount             float64
	Deadline              time.Time
	Status                string
}
