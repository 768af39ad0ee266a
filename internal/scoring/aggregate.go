package scoring

import (
	"github.com/spigell/fit-screener/internal/evidence"
)

// Aggregator runs the four scorers and combines them into the base score.
type Aggregator struct {
	weights Weights
	scorers []Scorer
}

// NewAggregator validates the weights once. The weights never change afterwards.
func NewAggregator(w Weights) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	return &Aggregator{
		weights: w,
		scorers: []Scorer{
			TechnicalScorer{},
			ExperienceScorer{},
			ComplexityScorer{},
			DomainScorer{},
		},
	}, nil
}

// Weights returns the configured weights.
func (a *Aggregator) Weights() Weights { return a.weights }

// Score computes every sub-score and the base score. A nil bundle or job
// description is treated as empty.
func (a *Aggregator) Score(b *evidence.Bundle, jd *evidence.JobDescription) Breakdown {
	b, jd = orEmpty(b, jd)

	out := Breakdown{SubScores: make([]SubScore, 0, len(a.scorers))}

	total := 0.0
	for _, scorer := range a.scorers {
		sub := scorer.Score(b, jd)
		sub.Value = clampScore(sub.Value)
		sub.Weight = a.weights.of(scorer.Category())
		total += sub.Weighted()
		out.SubScores = append(out.SubScores, sub)
	}

	out.Base = clampScore(round2(total))
	return out
}
