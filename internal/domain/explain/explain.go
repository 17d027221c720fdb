// Package explain turns category scores into reason codes, a short
// natural-language explanation and recommended actions. Pure functions:
// no randomness, no I/O; the reference time is passed in by the caller.
package explain

import (
	"fmt"
	"strings"
	"time"

	"github.com/grantwise/matchd/internal/domain/model"
)

// Threshold constants shared by reason codes and explanation templates.
const (
	strongThreshold = 0.8
	riskThreshold   = 0.3

	urgentDeadlineWindow = 30 * 24 * time.Hour
)

// Reason codes emitted for category scores.
const (
	CodeStrongIndustry  = "STRONG_INDUSTRY_FIT"
	CodeStrongSize      = "STRONG_SIZE_FIT"
	CodeStrongNeeds     = "STRONG_NEEDS_FIT"
	CodeStrongTechnical = "STRONG_TECHNICAL_FIT"
	CodeStrongHistory   = "STRONG_TRACK_RECORD"
	CodeIndustryRisk    = "INDUSTRY_MISMATCH_RISK"
	CodeSizeRisk        = "SIZE_MISMATCH_RISK"
	CodeDeadlineSoon    = "DEADLINE_SOON"
)

// Input bundles everything the generator reads.
type Input struct {
	Candidate model.Candidate
	Scores    model.CategoryScores
	Overall   float64
	Now       time.Time
}

// Output is the explained view of one match.
type Output struct {
	ReasonCodes []string
	Explanation string
	Actions     []string
	Urgent      bool
}

// Generate derives reason codes, explanation text and recommended actions
// from fixed threshold rules.
func Generate(in Input) Output {
	out := Output{
		ReasonCodes: reasonCodes(in),
		Urgent:      deadlineSoon(in.Candidate.Deadline, in.Now),
	}
	out.Explanation = explanation(in)
	out.Actions = actions(in.Overall, in.Candidate.Deadline, out.Urgent)
	if out.Urgent {
		out.ReasonCodes = append(out.ReasonCodes, CodeDeadlineSoon)
	}
	return out
}

func reasonCodes(in Input) []string {
	codes := make([]string, 0, 4)
	s := in.Scores
	if s.Industry > strongThreshold {
		codes = append(codes, CodeStrongIndustry)
	}
	if s.Size > strongThreshold {
		codes = append(codes, CodeStrongSize)
	}
	if s.Needs > strongThreshold {
		codes = append(codes, CodeStrongNeeds)
	}
	if s.Technical > strongThreshold {
		codes = append(codes, CodeStrongTechnical)
	}
	if s.Historical > strongThreshold {
		codes = append(codes, CodeStrongHistory)
	}
	if s.Industry < riskThreshold {
		codes = append(codes, CodeIndustryRisk)
	}
	if s.Size < riskThreshold {
		codes = append(codes, CodeSizeRisk)
	}
	return codes
}

// explanation assembles templated strengths and concerns triggered by the
// same thresholds that drive the reason codes.
func explanation(in Input) string {
	s := in.Scores
	var strengths, concerns []string
	if s.Industry > strongThreshold {
		strengths = append(strengths, "the scheme targets your industry")
	}
	if s.Size > strongThreshold {
		strengths = append(strengths, "your company size matches the eligibility criteria")
	}
	if s.Needs > strongThreshold {
		strengths = append(strengths, "the scheme closely matches your stated needs")
	}
	if s.Technical > strongThreshold {
		strengths = append(strengths, "your technical maturity meets the requirements")
	}
	if s.Historical > strongThreshold {
		strengths = append(strengths, "your application track record is strong")
	}
	if s.Industry < riskThreshold {
		concerns = append(concerns, "the scheme targets a different industry")
	}
	if s.Size < riskThreshold {
		concerns = append(concerns, "your company size falls outside the target range")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s scored %.2f.", in.Candidate.Title, in.Overall)
	if len(strengths) > 0 {
		b.WriteString(" Strengths: " + strings.Join(strengths, "; ") + ".")
	}
	if len(concerns) > 0 {
		b.WriteString(" Concerns: " + strings.Join(concerns, "; ") + ".")
	}
	return b.String()
}

// actions returns the recommended next steps for an overall-score band,
// with an urgency action prepended when the deadline is near.
func actions(overall float64, deadline time.Time, urgent bool) []string {
	var acts []string
	switch {
	case overall > 0.8:
		acts = []string{
			"Start preparing application documents",
			"Review the full eligibility criteria",
			"Contact the granting body for a pre-application check",
		}
	case overall > 0.6:
		acts = []string{
			"Review the full eligibility criteria",
			"Estimate the application effort against the grant amount",
		}
	case overall > 0.45:
		acts = []string{"Shortlist for a later review round"}
	default:
		acts = []string{"Monitor the scheme for criteria changes"}
	}
	if urgent {
		acts = append([]string{
			fmt.Sprintf("Apply before %s: less than 30 days remaining", deadline.Format("2006-01-02")),
		}, acts...)
	}
	return acts
}

func deadlineSoon(deadline, now time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	until := deadline.Sub(now)
	return until > 0 && until <= urgentDeadlineWindow
}
