// Package report defines the cached result of an analysis, the fingerprint
// it is keyed by, the cache layers that store it and its export formats.
package report

import (
	"time"

	"github.com/spigell/fit-screener/internal/scoring"
)

// Narrative is the qualitative part of a report.
type Narrative struct {
	Summary             string   `json:"summary"`
	AdjustmentReasoning string   `json:"adjustment_reasoning,omitempty"`
	StrongEvidence      []string `json:"strong_evidence,omitempty"`
	WeakEvidence        []string `json:"weak_evidence,omitempty"`
	MissingSkills       []string `json:"missing_skills,omitempty"`
	RedFlags            []string `json:"red_flags,omitempty"`
	InterviewQuestions  []string `json:"interview_questions,omitempty"`
}

// Report is the cache entry for one fingerprint. It is never modified after
// it has been stored.
type Report struct {
	Fingerprint    string            `json:"fingerprint"`
	ProjectID      string            `json:"project_id"`
	ProjectName    string            `json:"project_name,omitempty"`
	GitHubLogin    string            `json:"github_login"`
	CandidateName  string            `json:"candidate_name,omitempty"`
	Model          string            `json:"model"`
	ScoringVersion string            `json:"scoring_version"`
	Breakdown      scoring.Breakdown `json:"breakdown"`
	Score          scoring.Blended   `json:"score"`
	Narrative      Narrative         `json:"narrative"`
	EvidenceNotes  []string          `json:"evidence_notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// FinalScore returns the blended score.
func (r *Report) FinalScore() float64 { return r.Score.Final }

// Confidence returns the agreement label of the blended score.
func (r *Report) Confidence() scoring.Confidence { return r.Score.Confidence }
