package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/evidence"
)

// Profile is the public profile of a GitHub user.
type Profile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Blog        string    `json:"blog"`
	HTMLURL     string    `json:"html_url"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fields returns the profile fields that identify the analysed content.
// Follower counts are left out so that social churn does not invalidate reports.
func (p *Profile) Fields() map[string]string {
	if p == nil {
		return nil
	}
	return map[string]string{
		"login":        p.Login,
		"name":         p.Name,
		"bio":          p.Bio,
		"company":      p.Company,
		"location":     p.Location,
		"blog":         p.Blog,
		"public_repos": strconv.Itoa(p.PublicRepos),
	}
}

type repository struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Size        int       `json:"size"`
	Stars       int       `json:"stargazers_count"`
	Fork        bool      `json:"fork"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

func (r repository) toEvidence() evidence.Repository {
	return evidence.Repository{
		Name:        r.Name,
		Description: r.Description,
		Language:    r.Language,
		SizeKB:      r.Size,
		Stars:       r.Stars,
		Fork:        r.Fork,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		PushedAt:    r.PushedAt,
	}
}

// Profile fetches the user's public profile.
func (c *Client) Profile(ctx context.Context, login string) (*Profile, error) {
	var profile Profile
	err := c.getJSON(ctx, "/users/"+url.PathEscape(login), nil, &profile)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, login)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", login, err)
	}

	return &profile, nil
}

// Repositories lists the repositories the user owns, most recently updated first.
func (c *Client) Repositories(ctx context.Context, login string) ([]evidence.Repository, error) {
	q := url.Values{}
	q.Set("type", "owner")
	q.Set("sort", "updated")
	q.Set("per_page", strconv.Itoa(perPage))

	var out []evidence.Repository
	for page := 1; page <= max(c.MaxPages, 1); page++ {
		q.Set("page", strconv.Itoa(page))

		var batch []repository
		err := c.getJSON(ctx, "/users/"+url.PathEscape(login)+"/repos", q, &batch)
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, login)
		}
		if err != nil {
			return nil, fmt.Errorf("list repositories of %s: %w", login, err)
		}

		for _, repo := range batch {
			out = append(out, repo.toEvidence())
		}

		if len(batch) < perPage {
			break
		}
		c.logger.Debug("additional request needed", zap.Int("page", page+1))
	}

	return out, nil
}

// Readme returns the raw README of a repository, or an empty string when
// the repository has none.
func (c *Client) Readme(ctx context.Context, owner, repo string) (string, error) {
	data, err := c.get(ctx, "/repos/"+url.PathEscape(owner)+"/"+url.PathEscape(repo)+"/readme", nil, acceptRaw)
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get readme %s/%s: %w", owner, repo, err)
	}
	return string(data), nil
}
