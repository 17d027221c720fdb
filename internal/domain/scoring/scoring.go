// Package scoring computes bounded, explainable match scores for
// (profile, candidate) pairs. Scoring is a deterministic fixed-weight
// function: no learned model, no I/O, no randomness.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/grantwise/matchd/internal/domain/feature"
	"github.com/grantwise/matchd/internal/domain/model"
)

// Weights combine the five category scores into the overall score.
// They must sum to 1.0; New panics otherwise.
type Weights struct {
	Industry   float64
	Size       float64
	Needs      float64
	Technical  float64
	Historical float64
}

// DefaultWeights are the production weights.
var DefaultWeights = Weights{ //nolint:gochecknoglobals // fixed constant set
	Industry:   0.25,
	Size:       0.20,
	Needs:      0.25,
	Technical:  0.20,
	Historical: 0.10,
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Industry + w.Size + w.Needs + w.Technical + w.Historical
}

// Category score levels per dimension. See the score* functions for how
// each level is selected.
const (
	industryExact        = 1.0
	industrySimilar      = 0.7
	industryUnrestricted = 0.5
	industryMismatch     = 0.1

	sizeExact    = 1.0
	sizeAdjacent = 0.6
	sizeMismatch = 0.2

	techFloor      = 0.1
	histBaseline   = 0.5
	histSuccessW   = 0.3
	histExperience = 0.2

	maxComplexityLevel = 3
)

// Scorer computes category scores and the weighted overall score for one
// (profile, candidate) pair. Implementations are pure and safe for
// concurrent use.
type Scorer interface {
	Score(p model.Profile, fv model.FeatureVector, c model.Candidate) (model.CategoryScores, float64)
}

// Option applies a configuration option to the scorer.
type Option func(*scorer)

// WithWeights overrides the category weights. The override must still sum
// to 1.0.
func WithWeights(w Weights) Option {
	return func(s *scorer) {
		s.weights = w
	}
}

// WithSimilarIndustries replaces the curated similar-industry table.
func WithSimilarIndustries(table map[string][]string) Option {
	return func(s *scorer) {
		if table != nil {
			s.similar = table
		}
	}
}

type scorer struct {
	weights   Weights
	similar   map[string][]string
	stopwords map[string]struct{}
}

// New creates a scorer. Panics when the configured weights do not sum to
// 1.0: a bad weight set silently skews every score, so it is a startup
// invariant rather than a runtime error.
func New(opts ...Option) Scorer {
	s := &scorer{
		weights:   DefaultWeights,
		similar:   defaultSimilarIndustries(),
		stopwords: feature.DefaultStopwords(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if math.Abs(s.weights.Sum()-1.0) > 1e-9 {
		panic(fmt.Sprintf("scoring: weights sum to %v, want 1.0", s.weights.Sum()))
	}
	return s
}

// Score computes the five category scores and the weighted overall score,
// rounded to 4 decimal places. Never fails for well-formed input; callers
// reject malformed candidates via ValidateCandidate first.
func (s *scorer) Score(p model.Profile, fv model.FeatureVector, c model.Candidate) (model.CategoryScores, float64) {
	cs := model.CategoryScores{
		Industry:   s.scoreIndustry(p.IndustryCode, c.TargetIndustries),
		Size:       s.scoreSize(p, c.TargetCompanySizes),
		Needs:      s.scoreNeeds(fv.Needs, c),
		Technical:  s.scoreTechnical(fv.Technical, c),
		Historical: scoreHistorical(fv.Experience),
	}
	overall := cs.Industry*s.weights.Industry +
		cs.Size*s.weights.Size +
		cs.Needs*s.weights.Needs +
		cs.Technical*s.weights.Technical +
		cs.Historical*s.weights.Historical
	return cs, Round4(overall)
}

// scoreIndustry: exact target match 1.0, curated-similar 0.7, candidate
// without industry restriction 0.5, otherwise 0.1.
func (s *scorer) scoreIndustry(code string, targets []string) float64 {
	if len(targets) == 0 {
		return industryUnrestricted
	}
	code = strings.TrimSpace(code)
	for _, t := range targets {
		if code != "" && code == strings.TrimSpace(t) {
			return industryExact
		}
	}
	for _, t := range targets {
		if s.industriesSimilar(code, strings.TrimSpace(t)) {
			return industrySimilar
		}
	}
	return industryMismatch
}

func (s *scorer) industriesSimilar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	for _, sim := range s.similar[b] {
		if sim == a {
			return true
		}
	}
	for _, sim := range s.similar[a] {
		if sim == b {
			return true
		}
	}
	return false
}

// scoreSize: exact category 1.0, unrestricted candidate 1.0, adjacent
// category 0.6, otherwise 0.2.
func (s *scorer) scoreSize(p model.Profile, accepted []string) float64 {
	if len(accepted) == 0 {
		return sizeExact
	}
	idx := feature.SizeCategoryIndex(p.Employees, p.AnnualRevenue)
	cat := feature.SizeCategory(p.Employees, p.AnnualRevenue)
	adjacent := false
	for _, a := range accepted {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == cat {
			return sizeExact
		}
		if d := idx - sizeIndexOf(a); d == 1 || d == -1 {
			adjacent = true
		}
	}
	if adjacent {
		return sizeAdjacent
	}
	return sizeMismatch
}

func sizeIndexOf(cat string) int {
	switch cat {
	case "small":
		return 0
	case "medium":
		return 1
	case "large":
		return 2
	}
	return -99 // unknown categories are never adjacent
}

// scoreNeeds: cosine similarity between the profile needs vector and a
// term-weighted vector over the candidate's description and keywords.
func (s *scorer) scoreNeeds(needs []float64, c model.Candidate) float64 {
	cv := feature.TermVector(c.Description, c.Keywords, s.stopwords)
	return math.Min(1.0, Cosine(needs, cv))
}

// scoreTechnical compares the company technical level against the
// candidate's requirement complexity: full credit when level >= complexity,
// decaying credit per level of shortfall, floor 0.1.
func (s *scorer) scoreTechnical(technical []float64, c model.Candidate) float64 {
	level := companyTechnicalLevel(technical)
	shortfall := requirementComplexity(c) - level
	switch {
	case shortfall <= 0:
		return 1.0
	case shortfall == 1:
		return 0.7
	case shortfall == 2:
		return 0.4
	default:
		return techFloor
	}
}

// companyTechnicalLevel projects the technical sub-vector onto a 0..3 scale.
func companyTechnicalLevel(technical []float64) int {
	if len(technical) == 0 {
		return 0
	}
	var sum float64
	for _, v := range technical {
		sum += v
	}
	mean := sum / float64(len(technical))
	return int(math.Round(mean * maxComplexityLevel))
}

// technicalTerms in a candidate description raise its complexity estimate.
var technicalTerms = []string{ //nolint:gochecknoglobals // curated constant list
	"ai", "automation", "cloud", "api", "iot", "machine", "software",
	"digital", "data", "robot", "sensor", "platform",
}

// requirementComplexity estimates a 0..3 complexity level from explicit
// requirements plus technical vocabulary in the description.
func requirementComplexity(c model.Candidate) int {
	level := len(c.TechnicalRequirements)
	desc := strings.ToLower(c.Description)
	hits := 0
	for _, term := range technicalTerms {
		if strings.Contains(desc, term) {
			hits++
		}
	}
	level += hits / 3
	if level > maxComplexityLevel {
		level = maxComplexityLevel
	}
	return level
}

// scoreHistorical: baseline plus weighted experience components, capped at 1.
func scoreHistorical(experience []float64) float64 {
	score := histBaseline
	if len(experience) > 0 {
		score += histSuccessW * experience[0]
	}
	if len(experience) > 1 {
		score += histExperience * experience[1]
	}
	return math.Min(1.0, score)
}

// Confidence buckets an overall score. The upper boundaries are strictly
// exclusive: exactly 0.8 is "medium" and exactly 0.6 is "low".
func Confidence(score float64) string {
	switch {
	case score > 0.8:
		return "high"
	case score > 0.6:
		return "medium"
	default:
		return "low"
	}
}

// Round4 rounds to 4 decimal places, the precision persisted for overall
// scores.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// ValidateCandidate rejects malformed candidate records before scoring.
// The pipeline logs and skips candidates that fail here.
func ValidateCandidate(c model.Candidate) error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return fmt.Errorf("%w: missing id", ErrMalformedCandidate)
	case c.MinAmount < 0 || c.MaxAmount < 0:
		return fmt.Errorf("%w: negative amount", ErrMalformedCandidate)
	case c.MaxAmount > 0 && c.MinAmount > c.MaxAmount:
		return fmt.Errorf("%w: min amount above max", ErrMalformedCandidate)
	}
	return nil
}

// defaultSimilarIndustries is the curated table of related activity codes.
// Keyed by target code; values are profile codes considered close enough
// for partial industry credit.
func defaultSimilarIndustries() map[string][]string {
	return map[string][]string{
		"01": {"02", "03"}, // agriculture ~ forestry, fishing
		"02": {"01", "03"},
		"03": {"01", "02"},
		"10": {"11", "01"}, // food ~ beverages, agriculture
		"11": {"10"},
		"25": {"28", "24"}, // fabricated metal ~ machinery, basic metal
		"28": {"25", "27"},
		"37": {"38", "39"}, // sewerage ~ waste collection, remediation
		"38": {"37", "39"},
		"39": {"38", "37"}, // remediation ~ waste chain
		"62": {"63", "58"}, // programming ~ information services, publishing
		"63": {"62"},
		"71": {"72", "74"}, // engineering ~ R&D, other professional
		"72": {"71"},
	}
}
