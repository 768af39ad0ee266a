package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxInterviewQuestions caps the merged question list.
const maxInterviewQuestions = 5

// Panel asks several reviewers concurrently and merges their answers.
type Panel struct {
	members []Adjuster
	logger  *zap.Logger
}

// NewPanel builds a panel. At least one member is required.
func NewPanel(logger *zap.Logger, members ...Adjuster) (*Panel, error) {
	if len(members) == 0 {
		return nil, errors.New("panel requires at least one adjuster")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{members: members, logger: logger}, nil
}

// Model joins the member models in panel order.
func (p *Panel) Model() string {
	models := make([]string, 0, len(p.members))
	for _, m := range p.members {
		models = append(models, m.Model())
	}
	return strings.Join(models, "+")
}

// Assess runs every member. Failed members are dropped; the call fails only
// when every member fails.
func (p *Panel) Assess(ctx context.Context, req *Request) (*Assessment, error) {
	results := make([]*Assessment, len(p.members))
	errs := make([]error, len(p.members))

	var g errgroup.Group
	for i, member := range p.members {
		g.Go(func() error {
			res, err := member.Assess(ctx, req)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", member.Model(), err)
				p.logger.Warn("panel member failed", zap.String("model", member.Model()), zap.Error(err))
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var ok []*Assessment
	for _, res := range results {
		if res != nil {
			ok = append(ok, res)
		}
	}
	if len(ok) == 0 {
		return nil, fmt.Errorf("all panel members failed: %w", errors.Join(errs...))
	}

	return merge(p.Model(), ok), nil
}

func merge(model string, results []*Assessment) *Assessment {
	out := &Assessment{Model: model}

	sum, count := 0, 0
	var reasons, raws []string
	for _, res := range results {
		if res.HasAdjustment {
			sum += res.Adjustment
			count++
		}
		if out.Summary == "" {
			out.Summary = res.Summary
		}
		if res.Reasoning != "" {
			reasons = append(reasons, res.Model+": "+res.Reasoning)
		}
		raws = append(raws, res.Raw)

		out.StrongEvidence = appendUnique(out.StrongEvidence, res.StrongEvidence...)
		out.WeakEvidence = appendUnique(out.WeakEvidence, res.WeakEvidence...)
		out.MissingSkills = appendUnique(out.MissingSkills, res.MissingSkills...)
		out.RedFlags = appendUnique(out.RedFlags, res.RedFlags...)
		out.InterviewQuestions = appendUnique(out.InterviewQuestions, res.InterviewQuestions...)
	}

	if count > 0 {
		out.Adjustment = int(math.Round(float64(sum) / float64(count)))
		out.HasAdjustment = true
	}
	if len(out.InterviewQuestions) > maxInterviewQuestions {
		out.InterviewQuestions = out.InterviewQuestions[:maxInterviewQuestions]
	}
	out.Reasoning = strings.Join(reasons, "\n")
	out.Raw = strings.Join(raws, "\n")

	return out
}

func appendUnique(dst []string, items ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, d := range dst {
		seen[strings.ToLower(d)] = struct{}{}
	}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dst = append(dst, item)
	}
	return dst
}
