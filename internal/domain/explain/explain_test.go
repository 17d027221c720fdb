package explain_test

import (
	"testing"
	"time"

	explain "github.com/grantwise/matchd/internal/domain/explain"
	"github.com/grantwise/matchd/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a strong match across all categories", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{ID: "c1", Title: "Automation Grant"},
			Scores: model.CategoryScores{
				Industry: 0.9, Size: 1.0, Needs: 0.85, Technical: 0.95, Historical: 0.9,
			},
			Overall: 0.91,
			Now:     now,
		})

		Convey("Then every strong reason code is emitted", func() {
			So(out.ReasonCodes, ShouldContain, explain.CodeStrongIndustry)
			So(out.ReasonCodes, ShouldContain, explain.CodeStrongSize)
			So(out.ReasonCodes, ShouldContain, explain.CodeStrongNeeds)
			So(out.ReasonCodes, ShouldContain, explain.CodeStrongTechnical)
			So(out.ReasonCodes, ShouldContain, explain.CodeStrongHistory)
		})

		Convey("Then no risk codes are emitted", func() {
			So(out.ReasonCodes, ShouldNotContain, explain.CodeIndustryRisk)
			So(out.ReasonCodes, ShouldNotContain, explain.CodeSizeRisk)
		})

		Convey("Then the explanation names the candidate and strengths", func() {
			So(out.Explanation, ShouldContainSubstring, "Automation Grant scored 0.91.")
			So(out.Explanation, ShouldContainSubstring, "Strengths:")
			So(out.Explanation, ShouldNotContainSubstring, "Concerns:")
		})

		Convey("Then the top action band applies", func() {
			So(out.Actions[0], ShouldEqual, "Start preparing application documents")
		})
	})

	Convey("Given a weak match with mismatch risks", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{ID: "c2", Title: "Export Scheme"},
			Scores: model.CategoryScores{
				Industry: 0.1, Size: 0.2, Needs: 0.4, Technical: 0.4, Historical: 0.5,
			},
			Overall: 0.31,
			Now:     now,
		})

		Convey("Then risk codes are emitted", func() {
			So(out.ReasonCodes, ShouldContain, explain.CodeIndustryRisk)
			So(out.ReasonCodes, ShouldContain, explain.CodeSizeRisk)
		})

		Convey("Then the explanation lists concerns", func() {
			So(out.Explanation, ShouldContainSubstring, "Concerns:")
		})

		Convey("Then only the monitoring action applies", func() {
			So(out.Actions, ShouldResemble, []string{"Monitor the scheme for criteria changes"})
		})
	})

	Convey("Given boundary scores at the thresholds", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{ID: "c3", Title: "Edge Case"},
			Scores: model.CategoryScores{
				Industry: 0.8, Size: 0.3, Needs: 0.8, Technical: 0.8, Historical: 0.8,
			},
			Overall: 0.7,
			Now:     now,
		})

		Convey("Then exactly 0.8 is not strong and exactly 0.3 is not a risk", func() {
			So(out.ReasonCodes, ShouldBeEmpty)
		})
	})

	Convey("Given a deadline within the urgency window", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{
				ID:       "c4",
				Title:    "Closing Soon",
				Deadline: now.Add(10 * 24 * time.Hour),
			},
			Scores:  model.CategoryScores{Industry: 0.5, Size: 0.5, Needs: 0.5, Technical: 0.5, Historical: 0.5},
			Overall: 0.5,
			Now:     now,
		})

		Convey("Then the match is urgent", func() {
			So(out.Urgent, ShouldBeTrue)
			So(out.ReasonCodes, ShouldContain, explain.CodeDeadlineSoon)
		})

		Convey("Then the urgency action comes first", func() {
			So(out.Actions[0], ShouldContainSubstring, "Apply before 2025-06-11")
		})
	})

	Convey("Given a deadline outside the urgency window", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{
				ID:       "c5",
				Title:    "Far Off",
				Deadline: now.Add(90 * 24 * time.Hour),
			},
			Overall: 0.5,
			Now:     now,
		})

		So(out.Urgent, ShouldBeFalse)
		So(out.ReasonCodes, ShouldNotContain, explain.CodeDeadlineSoon)
	})

	Convey("Given a deadline already in the past", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{
				ID:       "c6",
				Title:    "Expired",
				Deadline: now.Add(-24 * time.Hour),
			},
			Overall: 0.5,
			Now:     now,
		})

		So(out.Urgent, ShouldBeFalse)
	})

	Convey("Given a candidate with no deadline", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{ID: "c7", Title: "Rolling"},
			Overall:   0.65,
			Now:       now,
		})

		Convey("Then it is never urgent", func() {
			So(out.Urgent, ShouldBeFalse)
		})

		Convey("Then the mid action band applies", func() {
			So(out.Actions[0], ShouldEqual, "Review the full eligibility criteria")
		})
	})

	Convey("Given an overall score in the shortlist band", t, func() {
		out := explain.Generate(explain.Input{
			Candidate: model.Candidate{ID: "c8", Title: "Maybe"},
			Overall:   0.5,
			Now:       now,
		})

		So(out.Actions, ShouldResemble, []string{"Shortlist for a later review round"})
	})
}
