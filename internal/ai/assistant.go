// Package ai defines the qualitative reviewer contract used by the screening
// pipeline and a panel that combines several reviewers.
package ai

import (
	"context"
	"fmt"

	"github.com/spigell/fit-screener/internal/report"
	"github.com/spigell/fit-screener/internal/scoring"
)

// Request is everything a reviewer sees about one candidate.
type Request struct {
	JobDescription string
	Resume         string
	LinkedIn       string
	// GitHubSummary is a compact text rendering of the candidate's profile and repositories.
	GitHubSummary string
	Breakdown     scoring.Breakdown
}

// Assessment is a reviewer's answer.
type Assessment struct {
	Model string
	// Adjustment is only meaningful when HasAdjustment is set. It is not
	// clamped here.
	Adjustment         int
	HasAdjustment      bool
	Summary            string
	Reasoning          string
	StrongEvidence     []string
	WeakEvidence       []string
	MissingSkills      []string
	RedFlags           []string
	InterviewQuestions []string
	Raw                string
}

// ScoringAdjustment converts the assessment into a blender input.
func (a *Assessment) ScoringAdjustment() scoring.Adjustment {
	if a == nil || !a.HasAdjustment {
		return scoring.NoAdjustment()
	}
	return scoring.NewAdjustment(a.Adjustment)
}

// Narrative returns the qualitative part of the report.
func (a *Assessment) Narrative() report.Narrative {
	if a == nil {
		return report.Narrative{}
	}
	return report.Narrative{
		Summary:             a.Summary,
		AdjustmentReasoning: a.Reasoning,
		StrongEvidence:      a.StrongEvidence,
		WeakEvidence:        a.WeakEvidence,
		MissingSkills:       a.MissingSkills,
		RedFlags:            a.RedFlags,
		InterviewQuestions:  a.InterviewQuestions,
	}
}

// Adjuster reviews a candidate and proposes a bounded score adjustment.
type Adjuster interface {
	// Model identifies the reviewer; it is part of the report fingerprint.
	Model() string
	Assess(ctx context.Context, req *Request) (*Assessment, error)
}

// MalformedAdjustmentError reports an adjustment that is not a usable number.
type MalformedAdjustmentError struct {
	Value any
}

func (e *MalformedAdjustmentError) Error() string {
	return fmt.Sprintf("malformed adjustment %v (%T)", e.Value, e.Value)
}
