package scoring

import (
	"fmt"
)

const (
	// MaxAdjustment bounds the qualitative adjustment in both directions.
	MaxAdjustment = 20
	// DefaultDisagreementThreshold is the largest adjustment still considered agreement.
	DefaultDisagreementThreshold = 10
)

// Confidence expresses how much the qualitative review agrees with the base score.
type Confidence string

const (
	ConfidenceHigh Confidence = "High"
	ConfidenceLow  Confidence = "Low"
)

// Adjustment is the qualitative delta proposed by the reviewer, if any.
type Adjustment struct {
	Value   int
	Present bool
}

// NewAdjustment returns a present adjustment.
func NewAdjustment(v int) Adjustment { return Adjustment{Value: v, Present: true} }

// NoAdjustment is used when the reviewer was unavailable or its answer was unusable.
func NoAdjustment() Adjustment { return Adjustment{} }

// Blended is the final score with the trail of how it was produced.
type Blended struct {
	Base          float64    `json:"base_score"`
	RawAdjustment int        `json:"raw_adjustment"`
	Adjustment    int        `json:"adjustment"`
	Clamped       bool       `json:"clamped"`
	Present       bool       `json:"adjustment_present"`
	Final         float64    `json:"final_score"`
	Confidence    Confidence `json:"confidence"`
}

// Blender applies bounded qualitative adjustments to base scores.
type Blender struct {
	threshold int
}

// NewBlender returns a blender with the given disagreement threshold.
func NewBlender(threshold int) (*Blender, error) {
	if threshold < 0 || threshold > MaxAdjustment {
		return nil, &ConfigurationError{
			Field:   "disagreement_threshold",
			Message: fmt.Sprintf("must be within [0, %d], got %d", MaxAdjustment, threshold),
		}
	}
	return &Blender{threshold: threshold}, nil
}

// Threshold returns the disagreement threshold.
func (bl *Blender) Threshold() int { return bl.threshold }

// Apply blends base with adj.
func (bl *Blender) Apply(base float64, adj Adjustment) Blended {
	base = clampScore(base)

	out := Blended{Base: base, Confidence: ConfidenceLow}
	if !adj.Present {
		out.Final = base
		return out
	}

	out.Present = true
	out.RawAdjustment = adj.Value
	out.Adjustment = max(-MaxAdjustment, min(MaxAdjustment, adj.Value))
	out.Clamped = out.Adjustment != adj.Value
	out.Final = clampScore(round2(base + float64(out.Adjustment)))

	if abs(out.Adjustment) <= bl.threshold {
		out.Confidence = ConfidenceHigh
	}

	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
