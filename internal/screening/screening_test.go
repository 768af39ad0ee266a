package screening

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/fit-screener/internal/ai"
	"github.com/spigell/fit-screener/internal/github"
	"github.com/spigell/fit-screener/internal/report"
	"github.com/spigell/fit-screener/internal/scoring"
	"github.com/spigell/fit-screener/internal/store"
)

const (
	scenarioJD     = "Engineer with Python and PyTorch for a fintech platform."
	scenarioResume = "Python developer building fintech products."
)

type stubGitHub struct {
	snap  *github.Snapshot
	err   error
	calls int
}

func (s *stubGitHub) Snapshot(context.Context, string, int) (*github.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

type stubAdjuster struct {
	mu         sync.Mutex
	assessment *ai.Assessment
	err        error
	calls      int
}

func (s *stubAdjuster) Model() string { return "stub-model" }

func (s *stubAdjuster) Assess(context.Context, *ai.Request) (*ai.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.assessment
	return &cp, nil
}

type stubCandidates struct {
	saved []store.Candidate
}

func (s *stubCandidates) UpsertCandidate(_ context.Context, c store.Candidate) (*store.Candidate, error) {
	c.ID = "cand-1"
	s.saved = append(s.saved, c)
	return &c, nil
}

func adjustBy(v int) *stubAdjuster {
	return &stubAdjuster{assessment: &ai.Assessment{
		Model:         "stub-model",
		Adjustment:    v,
		HasAdjustment: true,
		Summary:       "Solid Python background in fintech.",
		Reasoning:     "resume shows relevant domain work",
	}}
}

func newScreener(t *testing.T, gh SnapshotSource, adj ai.Adjuster, cands CandidateStore, log *zap.Logger) (*Screener, *report.MemoryCache) {
	t.Helper()

	cache := report.NewMemoryCache(0)
	opts := Options{
		GitHub:                gh,
		Adjuster:              adj,
		Cache:                 cache,
		Candidates:            cands,
		Weights:               scoring.DefaultWeights(),
		DisagreementThreshold: scoring.DefaultDisagreementThreshold,
		Logger:                log,
		Now:                   func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) },
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s, cache
}

func scenarioRequest() Request {
	return Request{
		Project:     &store.Project{ID: "proj-1", Name: "ml-platform", JobDescription: scenarioJD},
		GitHubLogin: "Octo",
		Resume:      scenarioResume,
	}
}

func emptyGitHub() *stubGitHub {
	return &stubGitHub{snap: &github.Snapshot{Profile: &github.Profile{Login: "octo", Name: "Octo Cat"}}}
}

func TestAnalyzeBlendsWithinThreshold(t *testing.T) {
	cands := &stubCandidates{}
	s, cache := newScreener(t, emptyGitHub(), adjustBy(10), cands, nil)

	res, err := s.Analyze(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep := res.Report
	if res.Cached {
		t.Fatalf("first run must not be cached")
	}
	if rep.Breakdown.Base != 52.5 || rep.FinalScore() != 62.5 || rep.Confidence() != scoring.ConfidenceHigh {
		t.Fatalf("unexpected score: base %v final %v confidence %s", rep.Breakdown.Base, rep.FinalScore(), rep.Confidence())
	}
	if rep.GitHubLogin != "octo" || rep.CandidateName != "Octo Cat" || rep.Model != "stub-model" {
		t.Fatalf("unexpected report identity: %+v", rep)
	}
	if !strings.HasPrefix(rep.ScoringVersion, scoring.Version) {
		t.Fatalf("unexpected scoring version %q", rep.ScoringVersion)
	}
	if len(rep.Narrative.MissingSkills) != 1 || rep.Narrative.MissingSkills[0] != "pytorch" {
		t.Fatalf("expected pytorch to be reported missing, got %q", rep.Narrative.MissingSkills)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected report to be cached")
	}
	if len(cands.saved) != 1 || cands.saved[0].FitScore != 62.5 || cands.saved[0].Confidence != "High" {
		t.Fatalf("unexpected candidate record: %+v", cands.saved)
	}
}

func TestAnalyzeServesRepeatedRunsFromCache(t *testing.T) {
	adj := adjustBy(10)
	gh := emptyGitHub()
	cands := &stubCandidates{}
	s, _ := newScreener(t, gh, adj, cands, nil)

	first, err := s.Analyze(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := s.Analyze(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.Cached {
		t.Fatalf("expected cached result")
	}
	if second.Report.Fingerprint != first.Report.Fingerprint || second.Report.FinalScore() != first.Report.FinalScore() {
		t.Fatalf("cached report differs from the original")
	}
	if adj.calls != 1 {
		t.Fatalf("expected one reviewer call, got %d", adj.calls)
	}
	if gh.calls != 2 {
		t.Fatalf("expected github to be consulted on every run, got %d", gh.calls)
	}
	if len(cands.saved) != 2 {
		t.Fatalf("expected candidate to be recorded on every run, got %d", len(cands.saved))
	}
}

func TestAnalyzeReanalyzeReplacesReport(t *testing.T) {
	adj := adjustBy(10)
	s, cache := newScreener(t, emptyGitHub(), adj, nil, nil)

	if _, err := s.Analyze(context.Background(), scenarioRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	adj.assessment.Adjustment = -5
	req := scenarioRequest()
	req.Reanalyze = true

	res, err := s.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cached || adj.calls != 2 {
		t.Fatalf("expected a fresh analysis, cached=%v calls=%d", res.Cached, adj.calls)
	}
	if res.Report.FinalScore() != 47.5 {
		t.Fatalf("expected 47.5, got %v", res.Report.FinalScore())
	}

	stored, ok, err := cache.Get(context.Background(), res.Report.Fingerprint)
	if err != nil || !ok {
		t.Fatalf("expected stored report, ok=%v err=%v", ok, err)
	}
	if stored.FinalScore() != 47.5 {
		t.Fatalf("expected stored report to be replaced, got %v", stored.FinalScore())
	}
}

func TestAnalyzeDegradesWhenReviewerFails(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	adj := &stubAdjuster{err: errors.New("quota exhausted")}
	s, _ := newScreener(t, emptyGitHub(), adj, nil, zap.New(core))

	res, err := s.Analyze(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Report.FinalScore() != 52.5 || res.Report.Confidence() != scoring.ConfidenceLow || res.Report.Score.Present {
		t.Fatalf("unexpected degraded score: %+v", res.Report.Score)
	}
	if logs.FilterMessageSnippet("qualitative review failed").Len() != 1 {
		t.Fatalf("expected reviewer failure to be logged")
	}
}

func TestAnalyzeWithoutReviewer(t *testing.T) {
	s, _ := newScreener(t, emptyGitHub(), nil, nil, nil)

	if s.Model() != "none" {
		t.Fatalf("expected model none, got %q", s.Model())
	}

	res, err := s.Analyze(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.FinalScore() != 52.5 || res.Report.Confidence() != scoring.ConfidenceLow {
		t.Fatalf("unexpected score without reviewer: %+v", res.Report.Score)
	}
}

func TestAnalyzeClampsLargeAdjustment(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s, _ := newScreener(t, emptyGitHub(), adjustBy(25), nil, zap.New(core))

	res, err := s.Analyze(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	score := res.Report.Score
	if score.Final != 72.5 || score.Adjustment != 20 || score.RawAdjustment != 25 || !score.Clamped || score.Confidence != scoring.ConfidenceLow {
		t.Fatalf("unexpected clamped score: %+v", score)
	}

	entries := logs.FilterMessageSnippet("clamped").All()
	if len(entries) != 1 {
		t.Fatalf("expected one clamp warning, got %d", len(entries))
	}
	if raw := entries[0].ContextMap()["raw"]; raw != int64(25) {
		t.Fatalf("expected raw adjustment 25 in log, got %v", raw)
	}
}

func TestAnalyzeFingerprintTracksInputs(t *testing.T) {
	s, _ := newScreener(t, emptyGitHub(), adjustBy(0), nil, nil)

	first, err := s.Analyze(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := scenarioRequest()
	req.LinkedIn = "Fintech engineer since 2019"
	req.HasLinkedIn = true
	second, err := s.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Cached || second.Report.Fingerprint == first.Report.Fingerprint {
		t.Fatalf("changing linkedin must produce a new fingerprint")
	}
}

func TestAnalyzeKeepsProjectsApart(t *testing.T) {
	adj := adjustBy(10)
	s, cache := newScreener(t, emptyGitHub(), adj, nil, nil)

	if _, err := s.Analyze(context.Background(), scenarioRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := scenarioRequest()
	req.Project = &store.Project{ID: "proj-2", Name: "ml-platform-emea", JobDescription: scenarioJD}

	res, err := s.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cached {
		t.Fatalf("a project with the same job description must not reuse another project's report")
	}
	if res.Report.ProjectID != "proj-2" || res.Report.ProjectName != "ml-platform-emea" {
		t.Fatalf("unexpected project identity: %s / %s", res.Report.ProjectID, res.Report.ProjectName)
	}
	if cache.Len() != 2 || adj.calls != 2 {
		t.Fatalf("expected two reports and two reviews, got %d and %d", cache.Len(), adj.calls)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		gh     *stubGitHub
		mutate func(*Request)
		expect error
	}{
		{
			name:   "unknown github user",
			gh:     &stubGitHub{err: github.ErrUserNotFound},
			mutate: func(*Request) {},
			expect: github.ErrUserNotFound,
		},
		{
			name:   "empty resume",
			gh:     emptyGitHub(),
			mutate: func(r *Request) { r.Resume = "  \n" },
			expect: ErrEmptyResume,
		},
		{
			name:   "missing login",
			gh:     emptyGitHub(),
			mutate: func(r *Request) { r.GitHubLogin = " " },
			expect: ErrNoLogin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			adj := adjustBy(10)
			s, cache := newScreener(t, tt.gh, adj, nil, nil)

			req := scenarioRequest()
			tt.mutate(&req)

			_, err := s.Analyze(context.Background(), req)
			if !errors.Is(err, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, err)
			}
			if adj.calls != 0 || cache.Len() != 0 {
				t.Fatalf("nothing must be computed on failure")
			}
		})
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	base := Options{GitHub: emptyGitHub(), Cache: report.NewMemoryCache(0), Weights: scoring.DefaultWeights(), DisagreementThreshold: 10}

	bad := base
	bad.Weights.Domain = 0.5
	var cfgErr *scoring.ConfigurationError
	if _, err := New(bad); !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error for weights, got %v", err)
	}

	bad = base
	bad.DisagreementThreshold = 30
	if _, err := New(bad); !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error for threshold, got %v", err)
	}

	bad = base
	bad.Cache = nil
	if _, err := New(bad); err == nil {
		t.Fatalf("expected error without cache")
	}
}

func TestVersionTagReflectsConfiguration(t *testing.T) {
	a := VersionTag(scoring.DefaultWeights(), 10)
	b := VersionTag(scoring.DefaultWeights(), 12)
	if a == b {
		t.Fatalf("threshold must change the version tag")
	}
}
