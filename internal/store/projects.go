package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Project is a hiring project with its job description.
type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	JobDescription string `json:"job_description"`
	CreatedAt      string `json:"created_at"`
}

// NewProject is the input of CreateProject.
type NewProject struct {
	Name           string `validate:"required,max=200"`
	JobDescription string `validate:"required"`
}

// CreateProject stores a new project.
func (s *Store) CreateProject(ctx context.Context, in NewProject) (*Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.JobDescription = strings.TrimSpace(in.JobDescription)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}

	p := &Project{
		ID:             uuid.NewString(),
		Name:           in.Name,
		JobDescription: in.JobDescription,
		CreatedAt:      s.timestamp(),
	}

	_, err := s.exec(ctx, `INSERT INTO projects (id, name, job_description, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.JobDescription, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return p, nil
}

// GetProject looks a project up by id or, failing that, by name.
func (s *Store) GetProject(ctx context.Context, idOrName string) (*Project, error) {
	var p Project
	err := s.queryRow(ctx, `SELECT id, name, job_description, created_at FROM projects WHERE id = ? OR name = ? ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END LIMIT 1`,
		idOrName, idOrName, idOrName).Scan(&p.ID, &p.Name, &p.JobDescription, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", idOrName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.query(ctx, `SELECT id, name, job_description, created_at FROM projects ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.JobDescription, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
