// Package feature converts raw profile attributes into fixed-length numeric
// vectors, one per scoring dimension. Pure transformation: no network or
// storage access, and absent attributes degrade to neutral defaults instead
// of failing.
package feature

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/grantwise/matchd/internal/domain/model"
)

// Normalization caps. Values above these saturate at 1.0.
const (
	maxEmployees = 1000.0
	maxRevenue   = 100_000_000.0 // EUR
)

// Builder derives a FeatureVector from a Profile.
type Builder interface {
	Build(p model.Profile) model.FeatureVector
}

// Option applies a configuration option to the vector builder.
type Option func(*builder)

// WithStopwords replaces the default stopword set used when tokenizing
// needs descriptions.
func WithStopwords(words []string) Option {
	return func(b *builder) {
		if len(words) == 0 {
			return
		}
		b.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			b.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

type builder struct {
	stopwords map[string]struct{}
}

// NewBuilder creates a vector builder with default configuration.
func NewBuilder(opts ...Option) Builder {
	b := &builder{stopwords: DefaultStopwords()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build derives the six sub-vectors. Never fails: a profile with missing
// attributes yields neutral vectors for the affected dimensions.
func (b *builder) Build(p model.Profile) model.FeatureVector {
	return model.FeatureVector{
		Industry:   industryVector(p.IndustryCode),
		Size:       sizeVector(p),
		Needs:      TermVector(p.Needs, nil, b.stopwords),
		Technical:  technicalVector(p.Maturity),
		Financial:  financialVector(p),
		Experience: experienceVector(p.History),
	}
}

// industryVector one-hot encodes the industry code into a fixed number of
// hash buckets. A missing code yields the neutral all-zero vector.
func industryVector(code string) []float64 {
	v := make([]float64, model.IndustryVectorLen)
	code = strings.TrimSpace(code)
	if code == "" {
		return v
	}
	v[bucket(code, model.IndustryVectorLen)] = 1.0
	return v
}

// sizeVector holds normalized employees, normalized revenue and a size
// category index scaled to [0,1].
func sizeVector(p model.Profile) []float64 {
	v := make([]float64, model.SizeVectorLen)
	v[0] = clamp01(float64(p.Employees) / maxEmployees)
	v[1] = clamp01(p.AnnualRevenue / maxRevenue)
	v[2] = float64(SizeCategoryIndex(p.Employees, p.AnnualRevenue)) / 2.0
	return v
}

func technicalVector(m model.TechnicalMaturity) []float64 {
	return []float64{
		clamp01(m.Digitalization),
		clamp01(m.Tooling),
		clamp01(m.Automation),
		clamp01(m.ITStaffing),
	}
}

func financialVector(p model.Profile) []float64 {
	return []float64{
		clamp01(p.AnnualRevenue / maxRevenue),
		clamp01(p.Financial.ProfitMargin),
		clamp01(p.Financial.Liquidity),
	}
}

func experienceVector(h model.OutcomeHistory) []float64 {
	return []float64{clamp01(h.PriorSuccess), clamp01(h.ApplicationExperience)}
}

// TermVector builds a hashed term-frequency vector over NeedsVectorLen
// buckets from free text plus optionally boosted keywords. Keywords count
// double: an explicit keyword is a stronger signal than a description token.
// Shared with the scorer so profile and candidate vectors are comparable.
func TermVector(text string, keywords []string, stopwords map[string]struct{}) []float64 {
	v := make([]float64, model.NeedsVectorLen)
	for _, tok := range Tokenize(text, stopwords) {
		v[bucket(tok, model.NeedsVectorLen)] += 1.0
	}
	for _, kw := range keywords {
		for _, tok := range Tokenize(kw, stopwords) {
			v[bucket(tok, model.NeedsVectorLen)] += 2.0
		}
	}
	return v
}

// Tokenize lowercases, splits on non-letter/digit runes and drops stopwords
// and single-character tokens.
func Tokenize(text string, stopwords map[string]struct{}) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 0x00C0)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SizeCategoryIndex derives the company size category from employee count
// and revenue using EU SME thresholds: 0=small, 1=medium, 2=large.
func SizeCategoryIndex(employees int, revenue float64) int {
	switch {
	case employees >= 250 || revenue >= 50_000_000:
		return 2
	case employees >= 50 || revenue >= 10_000_000:
		return 1
	default:
		return 0
	}
}

// SizeCategory is the string form used by candidate eligibility lists.
func SizeCategory(employees int, revenue float64) string {
	return [...]string{"small", "medium", "large"}[SizeCategoryIndex(employees, revenue)]
}

// bucket deterministically maps a token to [0, n).
func bucket(s string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(n)) //nolint:gosec // modulo of a 32-bit hash
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

// DefaultStopwords returns the shared stopword set. The scorer uses the same
// set when vectorizing candidate text so both sides tokenize identically.
func DefaultStopwords() map[string]struct{} {
	words := []string{
		"the", "and", "for", "with", "that", "this", "our", "are", "has",
		"have", "its", "will", "can", "into", "from", "een", "van", "het",
		"voor", "met", "der", "und", "die", "das",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
