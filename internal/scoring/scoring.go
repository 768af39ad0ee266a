// Package scoring implements the deterministic quantitative scorers, their
// weighted aggregation into a base score and the blending of that base score
// with a bounded qualitative adjustment.
package scoring

import (
	"math"

	"github.com/spigell/fit-screener/internal/evidence"
)

// Version identifies the scoring formulas. Bump it whenever a scorer changes
// so that cached reports computed with the old formulas are not reused.
const Version = "hybrid-1"

// Category names a quantitative scoring dimension.
type Category string

const (
	CategoryTechnical  Category = "technical_skills"
	CategoryExperience Category = "experience_level"
	CategoryComplexity Category = "project_complexity"
	CategoryDomain     Category = "domain_relevance"
)

const (
	minScore = 0.0
	maxScore = 100.0
)

// SubScore is the result of one scorer.
type SubScore struct {
	Category Category `json:"category"`
	Value    float64  `json:"value"`
	Weight   float64  `json:"weight"`
	Notes    []string `json:"notes,omitempty"`
}

// Weighted returns the sub-score's contribution to the base score.
func (s SubScore) Weighted() float64 {
	return s.Value * s.Weight
}

// Breakdown is the quantitative part of an analysis.
type Breakdown struct {
	SubScores []SubScore `json:"sub_scores"`
	Base      float64    `json:"base_score"`
}

// SubScore returns the sub-score for the category.
func (b Breakdown) SubScore(category Category) (SubScore, bool) {
	for _, s := range b.SubScores {
		if s.Category == category {
			return s, true
		}
	}
	return SubScore{}, false
}

// Scorer computes one sub-score from the evidence and the job description.
// Implementations are pure and never fail: degraded inputs map to a defined value.
type Scorer interface {
	Category() Category
	Score(b *evidence.Bundle, jd *evidence.JobDescription) SubScore
}

// orEmpty substitutes an empty bundle or job description for nil.
func orEmpty(b *evidence.Bundle, jd *evidence.JobDescription) (*evidence.Bundle, *evidence.JobDescription) {
	if b == nil {
		b = evidence.NewBundle(evidence.BundleSpec{})
	}
	if jd == nil {
		jd = evidence.NewJobDescription("", nil, nil)
	}
	return b, jd
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return minScore
	}
	return math.Max(minScore, math.Min(maxScore, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
