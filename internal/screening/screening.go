// Package screening runs the analysis of one candidate against one project.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/ai"
	"github.com/spigell/fit-screener/internal/evidence"
	"github.com/spigell/fit-screener/internal/github"
	"github.com/spigell/fit-screener/internal/logger"
	"github.com/spigell/fit-screener/internal/report"
	"github.com/spigell/fit-screener/internal/scoring"
	"github.com/spigell/fit-screener/internal/store"
)

// noReviewerModel identifies reports produced without a qualitative reviewer.
const noReviewerModel = "none"

var (
	// ErrEmptyResume is returned when the resume has no text.
	ErrEmptyResume = errors.New("resume text is required")
	// ErrNoLogin is returned when no GitHub login was given.
	ErrNoLogin = errors.New("github login is required")
)

// SnapshotSource fetches a candidate's GitHub footprint.
type SnapshotSource interface {
	Snapshot(ctx context.Context, login string, n int) (*github.Snapshot, error)
}

// CandidateStore records the latest result per project and candidate.
type CandidateStore interface {
	UpsertCandidate(ctx context.Context, c store.Candidate) (*store.Candidate, error)
}

// Options configures a Screener. GitHub, Cache and Weights are required;
// Adjuster and Candidates are optional.
type Options struct {
	GitHub     SnapshotSource
	Adjuster   ai.Adjuster
	Cache      report.Cache
	Candidates CandidateStore
	Extractor  *evidence.Extractor
	Weights    scoring.Weights
	// DisagreementThreshold is the largest adjustment still reported with high confidence.
	DisagreementThreshold int
	Logger                *zap.Logger
	Now                   func() time.Time
}

// Screener runs the analysis pipeline.
type Screener struct {
	github     SnapshotSource
	adjuster   ai.Adjuster
	cache      report.Cache
	candidates CandidateStore
	extractor  *evidence.Extractor
	aggregator *scoring.Aggregator
	blender    *scoring.Blender
	version    string
	logger     *zap.Logger
	now        func() time.Time
}

// New validates the options. Invalid weights or thresholds are returned as
// *scoring.ConfigurationError.
func New(opts Options) (*Screener, error) {
	if opts.GitHub == nil {
		return nil, errors.New("screening: github source is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("screening: report cache is required")
	}

	aggregator, err := scoring.NewAggregator(opts.Weights)
	if err != nil {
		return nil, err
	}
	blender, err := scoring.NewBlender(opts.DisagreementThreshold)
	if err != nil {
		return nil, err
	}

	s := &Screener{
		github:     opts.GitHub,
		adjuster:   opts.Adjuster,
		cache:      opts.Cache,
		candidates: opts.Candidates,
		extractor:  opts.Extractor,
		aggregator: aggregator,
		blender:    blender,
		version:    VersionTag(opts.Weights, opts.DisagreementThreshold),
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if s.extractor == nil {
		s.extractor = evidence.NewExtractor()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// VersionTag identifies the scoring formulas together with their configuration.
func VersionTag(w scoring.Weights, threshold int) string {
	return fmt.Sprintf("%s;w=%g/%g/%g/%g;t=%d", scoring.Version, w.Technical, w.Experience, w.Complexity, w.Domain, threshold)
}

// Model returns the reviewer identifier that goes into fingerprints.
func (s *Screener) Model() string {
	if s.adjuster == nil {
		return noReviewerModel
	}
	return s.adjuster.Model()
}

// Request describes one analysis.
type Request struct {
	Project     *store.Project
	GitHubLogin string
	Resume      string
	// LinkedIn is optional; HasLinkedIn distinguishes an absent profile from an empty one.
	LinkedIn    string
	HasLinkedIn bool
	// Reanalyze bypasses the cache and replaces the stored report.
	Reanalyze bool
}

// Result is the outcome of Analyze.
type Result struct {
	Report    *report.Report
	Cached    bool
	Candidate *store.Candidate
}

// Analyze fetches the candidate's GitHub data, then either returns the
// cached report for the resulting fingerprint or computes, stores and
// returns a new one.
func (s *Screener) Analyze(ctx context.Context, req Request) (*Result, error) {
	if req.Project == nil {
		return nil, errors.New("project is required")
	}
	login := strings.TrimSpace(req.GitHubLogin)
	if login == "" {
		return nil, ErrNoLogin
	}
	if strings.TrimSpace(req.Resume) == "" {
		return nil, ErrEmptyResume
	}

	log := logger.WithFields(s.logger, logger.CandidateFields(req.Project.Name, login)...)

	snap, err := s.github.Snapshot(ctx, login, scoring.TopRepositories)
	if err != nil {
		return nil, fmt.Errorf("fetch github data: %w", err)
	}

	model := s.Model()
	fp := report.Fingerprint(report.FingerprintInput{
		ProjectID:      req.Project.ID,
		JobDescription: req.Project.JobDescription,
		GitHubLogin:    login,
		Resume:         req.Resume,
		LinkedIn:       req.LinkedIn,
		HasLinkedIn:    req.HasLinkedIn,
		Profile:        snap.Profile.Fields(),
		Repositories:   snap.Repositories,
		Readmes:        snap.Readmes,
		Model:          model,
		ScoringVersion: s.version,
	})
	log = log.With(logger.FingerprintField(fp))

	if !req.Reanalyze {
		cached, ok, err := s.cache.Get(ctx, fp)
		if err != nil {
			log.Warn("report cache lookup failed", zap.Error(err))
		}
		if ok {
			log.Info("report served from cache")
			candidate, err := s.recordCandidate(ctx, req.Project, snap, cached)
			if err != nil {
				return nil, err
			}
			return &Result{Report: cached, Cached: true, Candidate: candidate}, nil
		}
	}

	jd := s.extractor.ParseJobDescription(req.Project.JobDescription)
	bundle := s.extractor.Extract(evidence.Sources{
		Resume:       req.Resume,
		LinkedIn:     req.LinkedIn,
		Bio:          snap.Bio(),
		Repositories: snap.Repositories,
		Readmes:      snap.Readmes,
	})
	for _, note := range bundle.Notes() {
		log.Debug("evidence gap", zap.String("note", note))
	}

	breakdown := s.aggregator.Score(bundle, jd)
	log.Debug("base score computed", zap.Float64("base", breakdown.Base))

	assessment := s.review(ctx, log, &ai.Request{
		JobDescription: req.Project.JobDescription,
		Resume:         req.Resume,
		LinkedIn:       req.LinkedIn,
		GitHubSummary:  snap.Summary(scoring.TopRepositories),
		Breakdown:      breakdown,
	})

	blended := s.blender.Apply(breakdown.Base, assessment.ScoringAdjustment())
	if blended.Clamped {
		log.Warn("adjustment out of range, clamped",
			zap.Int("raw", blended.RawAdjustment),
			zap.Int("applied", blended.Adjustment),
		)
	}

	narrative := assessment.Narrative()
	if len(narrative.MissingSkills) == 0 {
		narrative.MissingSkills = scoring.MissingSkills(bundle, jd)
	}

	rep := &report.Report{
		Fingerprint:    fp,
		ProjectID:      req.Project.ID,
		ProjectName:    req.Project.Name,
		GitHubLogin:    strings.ToLower(login),
		CandidateName:  candidateName(snap),
		Model:          model,
		ScoringVersion: s.version,
		Breakdown:      breakdown,
		Score:          blended,
		Narrative:      narrative,
		EvidenceNotes:  bundle.Notes(),
		CreatedAt:      s.now().UTC(),
	}

	if req.Reanalyze {
		if err := s.cache.Delete(ctx, fp); err != nil {
			return nil, fmt.Errorf("drop previous report: %w", err)
		}
	}
	if err := s.cache.Put(ctx, fp, rep); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	candidate, err := s.recordCandidate(ctx, req.Project, snap, rep)
	if err != nil {
		return nil, err
	}

	log.Info("analysis finished",
		zap.Float64("final", blended.Final),
		zap.String("confidence", string(blended.Confidence)),
	)

	return &Result{Report: rep, Candidate: candidate}, nil
}

// review asks the reviewer. Any failure degrades to an absent adjustment.
func (s *Screener) review(ctx context.Context, log *zap.Logger, req *ai.Request) *ai.Assessment {
	if s.adjuster == nil {
		log.Debug("no reviewer configured, skipping qualitative adjustment")
		return nil
	}

	assessment, err := s.adjuster.Assess(ctx, req)
	if err != nil {
		log.Warn("qualitative review failed, continuing without adjustment", zap.Error(err))
		return nil
	}
	if assessment == nil || !assessment.HasAdjustment {
		log.Warn("reviewer returned no usable adjustment")
	}
	return assessment
}

func (s *Screener) recordCandidate(ctx context.Context, project *store.Project, snap *github.Snapshot, rep *report.Report) (*store.Candidate, error) {
	if s.candidates == nil {
		return nil, nil
	}

	candidate, err := s.candidates.UpsertCandidate(ctx, store.Candidate{
		ProjectID:   project.ID,
		GitHubLogin: rep.GitHubLogin,
		Name:        candidateName(snap),
		FitScore:    rep.FinalScore(),
		Confidence:  string(rep.Confidence()),
		Fingerprint: rep.Fingerprint,
	})
	if err != nil {
		return nil, fmt.Errorf("record candidate: %w", err)
	}
	return candidate, nil
}

func candidateName(snap *github.Snapshot) string {
	if snap == nil || snap.Profile == nil {
		return ""
	}
	return strings.TrimSpace(snap.Profile.Name)
}
