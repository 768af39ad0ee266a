package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spigell/fit-screener/internal/report"
)

var _ report.Cache = (*Store)(nil)

// Get returns the stored report for the fingerprint.
func (s *Store) Get(ctx context.Context, fingerprint string) (*report.Report, bool, error) {
	var payload string
	err := s.queryRow(ctx, `SELECT payload FROM reports WHERE fingerprint = ?`, fingerprint).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get report: %w", err)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, false, fmt.Errorf("decode report %s: %w", fingerprint, err)
	}
	return &r, true, nil
}

// Put stores the report. A fingerprint is written at most once.
func (s *Store) Put(ctx context.Context, fingerprint string, r *report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = s.exec(ctx, `INSERT INTO reports (fingerprint, payload, created_at) VALUES (?, ?, ?) ON CONFLICT (fingerprint) DO NOTHING`,
		fingerprint, string(payload), s.timestamp())
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Delete removes the report so that it can be recomputed.
func (s *Store) Delete(ctx context.Context, fingerprint string) error {
	if _, err := s.exec(ctx, `DELETE FROM reports WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}
