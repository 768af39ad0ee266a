package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spigell/fit-screener/internal/evidence"
)

const (
	// TopRepositories is the number of repositories considered.
	TopRepositories = 5

	sizeSaturationKB   = 10000
	starSaturation     = 100
	languageSaturation = 3
	complexitySignals  = 4
	noRepositoriesNote = "no public repositories"
)

// ComplexityScorer scores the engineering depth visible in the candidate's
// most starred repositories.
type ComplexityScorer struct{}

func (ComplexityScorer) Category() Category { return CategoryComplexity }

func (ComplexityScorer) Score(b *evidence.Bundle, _ *evidence.JobDescription) SubScore {
	b, _ = orEmpty(b, nil)
	out := SubScore{Category: CategoryComplexity}

	repos := TopRepos(b.Repositories(), TopRepositories)
	if len(repos) == 0 {
		out.Value = minScore
		out.Notes = []string{noRepositoriesNote}
		return out
	}

	diversity := languageDiversity(repos)

	total := 0.0
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		total += repoComposite(repo, diversity)
		names = append(names, repo.Name)
	}

	out.Value = clampScore(maxScore * total / float64(len(repos)))
	out.Notes = []string{
		fmt.Sprintf("evaluated %d repositories: %s", len(repos), strings.Join(names, ", ")),
		fmt.Sprintf("language diversity %.2f", diversity),
	}

	return out
}

// TopRepos returns up to n repositories ordered by stars, then by the most
// recent update, then by name.
func TopRepos(repos []evidence.Repository, n int) []evidence.Repository {
	sorted := make([]evidence.Repository, len(repos))
	copy(sorted, repos)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.Name < b.Name
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func repoComposite(repo evidence.Repository, diversity float64) float64 {
	if repo.SizeKB <= 0 {
		return 0
	}

	docs := 0.0
	if repo.HasReadme {
		docs = 1
	}

	sum := logSignal(repo.SizeKB, sizeSaturationKB) + logSignal(repo.Stars, starSaturation) + diversity + docs
	return sum / complexitySignals
}

func logSignal(v, saturation int) float64 {
	if v <= 0 {
		return 0
	}
	return math.Min(1, math.Log10(1+float64(v))/math.Log10(1+float64(saturation)))
}

func languageDiversity(repos []evidence.Repository) float64 {
	langs := make(map[string]struct{})
	for _, repo := range repos {
		if lang := strings.ToLower(strings.TrimSpace(repo.Language)); lang != "" {
			langs[lang] = struct{}{}
		}
	}
	return math.Min(1, float64(len(langs))/languageSaturation)
}
