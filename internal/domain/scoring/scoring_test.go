package scoring_test

import (
	"testing"

	"github.com/grantwise/matchd/internal/domain/feature"
	"github.com/grantwise/matchd/internal/domain/model"
	scoring "github.com/grantwise/matchd/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeights(t *testing.T) {
	Convey("Given the default weights", t, func() {
		Convey("Then they sum to 1.0", func() {
			So(scoring.DefaultWeights.Sum(), ShouldAlmostEqual, 1.0, 1e-9)
		})
	})

	Convey("Given a scorer with invalid weights", t, func() {
		Convey("Then construction panics", func() {
			So(func() {
				scoring.New(scoring.WithWeights(scoring.Weights{Industry: 0.5}))
			}, ShouldPanic)
		})
	})

	Convey("Given a scorer with a valid weight override", t, func() {
		Convey("Then construction succeeds", func() {
			So(func() {
				scoring.New(scoring.WithWeights(scoring.Weights{
					Industry:   0.2,
					Size:       0.2,
					Needs:      0.2,
					Technical:  0.2,
					Historical: 0.2,
				}))
			}, ShouldNotPanic)
		})
	})
}

func TestIndustryScore(t *testing.T) {
	Convey("Given a scorer and a metal-working profile", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()
		profile := model.Profile{ID: "p1", IndustryCode: "25"}
		fv := b.Build(profile)

		Convey("When the candidate targets the exact industry", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TargetIndustries: []string{"25"}})
			So(cs.Industry, ShouldEqual, 1.0)
		})

		Convey("When the candidate targets a curated-similar industry", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TargetIndustries: []string{"28"}})
			So(cs.Industry, ShouldEqual, 0.7)
		})

		Convey("When the candidate has no industry restriction", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1"})
			So(cs.Industry, ShouldEqual, 0.5)
		})

		Convey("When the candidate targets an unrelated industry", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TargetIndustries: []string{"62"}})
			So(cs.Industry, ShouldEqual, 0.1)
		})
	})

	Convey("Given a remediation profile and a waste-collection target", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()
		profile := model.Profile{ID: "p1", IndustryCode: "38"}
		fv := b.Build(profile)

		Convey("Then the curated table grants partial credit", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TargetIndustries: []string{"39"}})
			So(cs.Industry, ShouldEqual, 0.7)
		})
	})
}

func TestSizeScore(t *testing.T) {
	Convey("Given a small company profile", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()
		profile := model.Profile{ID: "p1", Employees: 12, AnnualRevenue: 900_000}
		fv := b.Build(profile)

		Convey("When the candidate accepts small companies", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TargetCompanySizes: []string{"small"}})
			So(cs.Size, ShouldEqual, 1.0)
		})

		Convey("When the candidate accepts only medium companies", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TargetCompanySizes: []string{"medium"}})
			So(cs.Size, ShouldEqual, 0.6)
		})

		Convey("When the candidate accepts only large companies", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TargetCompanySizes: []string{"large"}})
			So(cs.Size, ShouldEqual, 0.2)
		})

		Convey("When the candidate has no size restriction", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1"})
			So(cs.Size, ShouldEqual, 1.0)
		})
	})

	Convey("Given EU SME thresholds", t, func() {
		Convey("Then 250 employees is large", func() {
			So(feature.SizeCategory(250, 0), ShouldEqual, "large")
		})
		Convey("Then 50M revenue is large", func() {
			So(feature.SizeCategory(5, 50_000_000), ShouldEqual, "large")
		})
		Convey("Then 50 employees is medium", func() {
			So(feature.SizeCategory(50, 0), ShouldEqual, "medium")
		})
		Convey("Then 10M revenue is medium", func() {
			So(feature.SizeCategory(5, 10_000_000), ShouldEqual, "medium")
		})
		Convey("Then anything below is small", func() {
			So(feature.SizeCategory(49, 9_999_999), ShouldEqual, "small")
		})
	})
}

func TestNeedsScore(t *testing.T) {
	Convey("Given a profile with a needs description", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()
		profile := model.Profile{ID: "p1", Needs: "robot welding automation production line"}
		fv := b.Build(profile)

		Convey("When the candidate describes the same needs", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{
				ID:          "c1",
				Description: "robot welding automation production line",
			})
			So(cs.Needs, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("When the candidate shares no vocabulary", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{
				ID:          "c1",
				Description: "organic farming subsidies livestock grazing",
			})
			So(cs.Needs, ShouldBeLessThan, 0.5)
		})

		Convey("When the profile has an empty needs description", func() {
			empty := b.Build(model.Profile{ID: "p2"})
			cs, _ := s.Score(model.Profile{ID: "p2"}, empty, model.Candidate{
				ID:          "c1",
				Description: "robot welding",
			})
			So(cs.Needs, ShouldEqual, 0.0)
		})
	})
}

func TestTechnicalScore(t *testing.T) {
	Convey("Given a technically mature profile", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()
		profile := model.Profile{
			ID: "p1",
			Maturity: model.TechnicalMaturity{
				Digitalization: 1.0, Tooling: 1.0, Automation: 1.0, ITStaffing: 1.0,
			},
		}
		fv := b.Build(profile)

		Convey("Then even demanding candidates score full credit", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{
				ID:                    "c1",
				TechnicalRequirements: []string{"erp", "plc", "mes"},
			})
			So(cs.Technical, ShouldEqual, 1.0)
		})
	})

	Convey("Given a profile with no technical maturity", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()
		profile := model.Profile{ID: "p1"}
		fv := b.Build(profile)

		Convey("When the candidate has one requirement", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TechnicalRequirements: []string{"erp"}})
			So(cs.Technical, ShouldEqual, 0.7)
		})

		Convey("When the candidate has two requirements", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TechnicalRequirements: []string{"erp", "plc"}})
			So(cs.Technical, ShouldEqual, 0.4)
		})

		Convey("When the candidate has three requirements", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1", TechnicalRequirements: []string{"erp", "plc", "mes"}})
			So(cs.Technical, ShouldEqual, 0.1)
		})

		Convey("When the candidate has no requirements", func() {
			cs, _ := s.Score(profile, fv, model.Candidate{ID: "c1"})
			So(cs.Technical, ShouldEqual, 1.0)
		})
	})
}

func TestHistoricalScore(t *testing.T) {
	Convey("Given profiles with varying outcome history", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()

		Convey("When the profile has no history", func() {
			p := model.Profile{ID: "p1"}
			cs, _ := s.Score(p, b.Build(p), model.Candidate{ID: "c1"})
			So(cs.Historical, ShouldEqual, 0.5)
		})

		Convey("When the profile has full history", func() {
			p := model.Profile{
				ID:      "p1",
				History: model.OutcomeHistory{PriorSuccess: 1.0, ApplicationExperience: 1.0},
			}
			cs, _ := s.Score(p, b.Build(p), model.Candidate{ID: "c1"})
			So(cs.Historical, ShouldEqual, 1.0)
		})

		Convey("When the profile has partial history", func() {
			p := model.Profile{
				ID:      "p1",
				History: model.OutcomeHistory{PriorSuccess: 0.5, ApplicationExperience: 0.5},
			}
			cs, _ := s.Score(p, b.Build(p), model.Candidate{ID: "c1"})
			So(cs.Historical, ShouldAlmostEqual, 0.75, 1e-9)
		})
	})
}

func TestConfidence(t *testing.T) {
	Convey("Given the confidence boundaries", t, func() {
		Convey("Then above 0.8 is high", func() {
			So(scoring.Confidence(0.81), ShouldEqual, "high")
		})
		Convey("Then exactly 0.8 is medium", func() {
			So(scoring.Confidence(0.8), ShouldEqual, "medium")
		})
		Convey("Then above 0.6 is medium", func() {
			So(scoring.Confidence(0.61), ShouldEqual, "medium")
		})
		Convey("Then exactly 0.6 is low", func() {
			So(scoring.Confidence(0.6), ShouldEqual, "low")
		})
		Convey("Then anything below is low", func() {
			So(scoring.Confidence(0.2), ShouldEqual, "low")
		})
	})
}

func TestRound4(t *testing.T) {
	Convey("Given overall score rounding", t, func() {
		So(scoring.Round4(0.123449), ShouldEqual, 0.1234)
		So(scoring.Round4(0.123461), ShouldEqual, 0.1235)
		So(scoring.Round4(1.0), ShouldEqual, 1.0)
		So(scoring.Round4(0.0), ShouldEqual, 0.0)
	})
}

func TestScoreBounds(t *testing.T) {
	Convey("Given arbitrary well-formed inputs", t, func() {
		s := scoring.New()
		b := feature.NewBuilder()
		profiles := []model.Profile{
			{ID: "a"},
			{ID: "b", IndustryCode: "62", Employees: 500, AnnualRevenue: 90_000_000,
				Needs: "cloud migration software platform",
				Maturity: model.TechnicalMaturity{
					Digitalization: 0.9, Tooling: 0.8, Automation: 0.7, ITStaffing: 0.6,
				},
				History: model.OutcomeHistory{PriorSuccess: 1.0, ApplicationExperience: 1.0}},
		}
		candidates := []model.Candidate{
			{ID: "x"},
			{ID: "y", TargetIndustries: []string{"01"}, TargetCompanySizes: []string{"large"},
				Description:           "ai data platform cloud api iot automation",
				TechnicalRequirements: []string{"erp", "plc", "mes", "scada"}},
		}

		Convey("Then every score stays within [0,1]", func() {
			for _, p := range profiles {
				fv := b.Build(p)
				for _, c := range candidates {
					cs, overall := s.Score(p, fv, c)
					So(overall, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(cs.Industry, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(cs.Size, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(cs.Needs, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(cs.Technical, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(cs.Historical, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})

		Convey("Then scoring is deterministic", func() {
			fv := b.Build(profiles[1])
			_, first := s.Score(profiles[1], fv, candidates[1])
			_, second := s.Score(profiles[1], fv, candidates[1])
			So(first, ShouldEqual, second)
		})
	})
}

func TestValidateCandidate(t *testing.T) {
	Convey("Given candidate records", t, func() {
		Convey("When the record is well formed", func() {
			err := scoring.ValidateCandidate(model.Candidate{ID: "c1", MinAmount: 10, MaxAmount: 100})
			So(err, ShouldBeNil)
		})

		Convey("When the id is missing", func() {
			err := scoring.ValidateCandidate(model.Candidate{})
			So(err, ShouldWrap, scoring.ErrMalformedCandidate)
		})

		Convey("When an amount is negative", func() {
			err := scoring.ValidateCandidate(model.Candidate{ID: "c1", MinAmount: -5})
			So(err, ShouldWrap, scoring.ErrMalformedCandidate)
		})

		Convey("When min exceeds max", func() {
			err := scoring.ValidateCandidate(model.Candidate{ID: "c1", MinAmount: 200, MaxAmount: 100})
			So(err, ShouldWrap, scoring.ErrMalformedCandidate)
		})
	})
}
