package feature_test

import (
	"testing"

	feature "github.com/grantwise/matchd/internal/domain/feature"
	"github.com/grantwise/matchd/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given a vector builder", t, func() {
		b := feature.NewBuilder()

		Convey("When building from a complete profile", func() {
			fv := b.Build(model.Profile{
				ID:            "p1",
				IndustryCode:  "25",
				Employees:     120,
				AnnualRevenue: 12_000_000,
				Needs:         "robot welding automation",
				Maturity: model.TechnicalMaturity{
					Digitalization: 0.8, Tooling: 0.6, Automation: 0.4, ITStaffing: 0.5,
				},
				Financial: model.Financials{ProfitMargin: 0.1, Liquidity: 0.7},
				History:   model.OutcomeHistory{PriorSuccess: 1.0, ApplicationExperience: 0.5},
			})

			Convey("Then every sub-vector has its fixed length", func() {
				So(fv.Industry, ShouldHaveLength, model.IndustryVectorLen)
				So(fv.Size, ShouldHaveLength, model.SizeVectorLen)
				So(fv.Needs, ShouldHaveLength, model.NeedsVectorLen)
				So(fv.Technical, ShouldHaveLength, model.TechnicalVectorLen)
				So(fv.Financial, ShouldHaveLength, model.FinancialVectorLen)
				So(fv.Experience, ShouldHaveLength, model.ExperienceVectorLen)
			})

			Convey("Then the industry vector is one-hot", func() {
				sum := 0.0
				for _, v := range fv.Industry {
					sum += v
				}
				So(sum, ShouldEqual, 1.0)
			})

			Convey("Then the size vector reflects a medium company", func() {
				So(fv.Size[2], ShouldEqual, 0.5)
			})

			Convey("Then the experience vector carries history as-is", func() {
				So(fv.Experience[0], ShouldEqual, 1.0)
				So(fv.Experience[1], ShouldEqual, 0.5)
			})
		})

		Convey("When building from an empty profile", func() {
			fv := b.Build(model.Profile{ID: "p2"})

			Convey("Then it never fails and vectors stay neutral", func() {
				So(fv.Industry, ShouldHaveLength, model.IndustryVectorLen)
				for _, v := range fv.Industry {
					So(v, ShouldEqual, 0.0)
				}
				for _, v := range fv.Needs {
					So(v, ShouldEqual, 0.0)
				}
				So(fv.Size[0], ShouldEqual, 0.0)
				So(fv.Experience[0], ShouldEqual, 0.0)
			})
		})

		Convey("When attributes exceed the normalization caps", func() {
			fv := b.Build(model.Profile{
				ID:            "p3",
				Employees:     100_000,
				AnnualRevenue: 9_000_000_000,
				Maturity:      model.TechnicalMaturity{Digitalization: 7.0},
			})

			Convey("Then values saturate at 1.0", func() {
				So(fv.Size[0], ShouldEqual, 1.0)
				So(fv.Size[1], ShouldEqual, 1.0)
				So(fv.Technical[0], ShouldEqual, 1.0)
			})
		})
	})
}

func TestTermVector(t *testing.T) {
	Convey("Given the shared term vectorizer", t, func() {
		stop := feature.DefaultStopwords()

		Convey("When vectorizing identical text", func() {
			a := feature.TermVector("robot welding production", nil, stop)
			b := feature.TermVector("robot welding production", nil, stop)
			So(a, ShouldResemble, b)
		})

		Convey("When keywords are supplied", func() {
			plain := feature.TermVector("", []string{"welding"}, stop)
			text := feature.TermVector("welding", nil, stop)

			Convey("Then a keyword counts double a description token", func() {
				for i := range plain {
					So(plain[i], ShouldEqual, 2*text[i])
				}
			})
		})

		Convey("When the text is empty", func() {
			v := feature.TermVector("", nil, stop)
			for _, x := range v {
				So(x, ShouldEqual, 0.0)
			}
		})
	})
}

func TestTokenize(t *testing.T) {
	Convey("Given the tokenizer", t, func() {
		stop := feature.DefaultStopwords()

		Convey("When the text mixes case and punctuation", func() {
			toks := feature.Tokenize("Robot-Welding, for the PRODUCTION line!", stop)
			So(toks, ShouldResemble, []string{"robot", "welding", "production", "line"})
		})

		Convey("When tokens are single characters", func() {
			toks := feature.Tokenize("a b robot c", stop)
			So(toks, ShouldResemble, []string{"robot"})
		})

		Convey("When custom stopwords are configured", func() {
			b := feature.NewBuilder(feature.WithStopwords([]string{"robot"}))
			fv := b.Build(model.Profile{ID: "p", Needs: "robot"})
			for _, x := range fv.Needs {
				So(x, ShouldEqual, 0.0)
			}
		})
	})
}
