package github

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/fit-screener/internal/evidence"
	"github.com/spigell/fit-screener/internal/scoring"
	"github.com/spigell/fit-screener/internal/utils"
)

const (
	readmeConcurrency  = 4
	readmeSummaryRunes = 1500
)

// Snapshot is everything fetched from GitHub for one candidate.
type Snapshot struct {
	Profile      *Profile
	Repositories []evidence.Repository
	// Readmes maps repository name to README text; repositories without a
	// README are absent.
	Readmes map[string]string
}

// Snapshot fetches the profile and repositories concurrently, then the
// READMEs of the top n repositories (as ranked for complexity scoring).
// Forks are skipped. A missing README is not an error.
func (c *Client) Snapshot(ctx context.Context, login string, n int) (*Snapshot, error) {
	snap := &Snapshot{Readmes: make(map[string]string)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := c.Profile(gctx, login)
		if err != nil {
			return err
		}
		snap.Profile = profile
		return nil
	})
	var repos []evidence.Repository
	g.Go(func() error {
		var err error
		repos, err = c.Repositories(gctx, login)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, repo := range repos {
		if !repo.Fork {
			snap.Repositories = append(snap.Repositories, repo)
		}
	}

	owner := snap.Profile.Login
	if owner == "" {
		owner = login
	}

	var mu sync.Mutex
	rg, rctx := errgroup.WithContext(ctx)
	rg.SetLimit(readmeConcurrency)
	for _, repo := range scoring.TopRepos(snap.Repositories, n) {
		rg.Go(func() error {
			text, err := c.Readme(rctx, owner, repo.Name)
			if err != nil {
				c.logger.Warn("skip readme", zap.String("repo", repo.Name), zap.Error(err))
				return nil
			}
			if strings.TrimSpace(text) == "" {
				return nil
			}
			mu.Lock()
			snap.Readmes[repo.Name] = text
			mu.Unlock()
			return nil
		})
	}
	if err := rg.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}

// Bio returns the profile bio, or an empty string.
func (s *Snapshot) Bio() string {
	if s == nil || s.Profile == nil {
		return ""
	}
	return s.Profile.Bio
}

// Summary renders a compact text description for the reviewer prompt.
func (s *Snapshot) Summary(n int) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	if p := s.Profile; p != nil {
		fmt.Fprintf(&b, "login: %s\n", p.Login)
		for _, kv := range [][2]string{{"name", p.Name}, {"bio", p.Bio}, {"company", p.Company}, {"location", p.Location}} {
			if strings.TrimSpace(kv[1]) != "" {
				fmt.Fprintf(&b, "%s: %s\n", kv[0], strings.TrimSpace(kv[1]))
			}
		}
		fmt.Fprintf(&b, "public repositories: %d, followers: %d\n", p.PublicRepos, p.Followers)
	}

	top := scoring.TopRepos(s.Repositories, n)
	if len(top) == 0 {
		b.WriteString("no public repositories\n")
		return strings.TrimSpace(b.String())
	}

	b.WriteString("top repositories:\n")
	for _, repo := range top {
		lang := repo.Language
		if lang == "" {
			lang = "unknown language"
		}
		fmt.Fprintf(&b, "- %s (%s, %d stars, %d KB)", repo.Name, lang, repo.Stars, repo.SizeKB)
		if d := strings.TrimSpace(repo.Description); d != "" {
			fmt.Fprintf(&b, ": %s", d)
		}
		b.WriteString("\n")
	}

	names := make([]string, 0, len(s.Readmes))
	for name := range s.Readmes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\nREADME of %s:\n%s\n", name, utils.TruncateForLog(s.Readmes[name], readmeSummaryRunes))
	}

	return strings.TrimSpace(b.String())
}
