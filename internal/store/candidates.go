package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Candidate is the latest analysis of a GitHub user within a project.
type Candidate struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	GitHubLogin string  `json:"github_username"`
	Name        string  `json:"name,omitempty"`
	FitScore    float64 `json:"fit_score"`
	Confidence  string  `json:"confidence"`
	Fingerprint string  `json:"fingerprint"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// UpsertCandidate inserts the candidate or updates the row for the same
// project and GitHub login.
func (s *Store) UpsertCandidate(ctx context.Context, c Candidate) (*Candidate, error) {
	c.GitHubLogin = strings.ToLower(strings.TrimSpace(c.GitHubLogin))
	if c.ProjectID == "" || c.GitHubLogin == "" {
		return nil, fmt.Errorf("candidate requires project and github login")
	}

	now := s.timestamp()
	_, err := s.exec(ctx, `INSERT INTO candidates (id, project_id, github_username, name, fit_score, confidence, fingerprint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, github_username) DO UPDATE SET
			name = excluded.name,
			fit_score = excluded.fit_score,
			confidence = excluded.confidence,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at`,
		uuid.NewString(), c.ProjectID, c.GitHubLogin, c.Name, c.FitScore, c.Confidence, c.Fingerprint, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert candidate: %w", err)
	}

	var out Candidate
	err = s.queryRow(ctx, `SELECT id, project_id, github_username, name, fit_score, confidence, fingerprint, created_at, updated_at
		FROM candidates WHERE project_id = ? AND github_username = ?`, c.ProjectID, c.GitHubLogin).
		Scan(&out.ID, &out.ProjectID, &out.GitHubLogin, &out.Name, &out.FitScore, &out.Confidence, &out.Fingerprint, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reload candidate: %w", err)
	}

	return &out, nil
}

// ListCandidates returns a project's candidates, best fit first.
func (s *Store) ListCandidates(ctx context.Context, projectID string) ([]Candidate, error) {
	rows, err := s.query(ctx, `SELECT id, project_id, github_username, name, fit_score, confidence, fingerprint, created_at, updated_at
		FROM candidates WHERE project_id = ? ORDER BY fit_score DESC, github_username ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.GitHubLogin, &c.Name, &c.FitScore, &c.Confidence, &c.Fingerprint, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
