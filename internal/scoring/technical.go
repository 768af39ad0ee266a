package scoring

import (
	"strings"

	"github.com/spigell/fit-screener/internal/evidence"
)

// TechnicalScorer scores the overlap between the job description's technical
// terms and the candidate's skills.
type TechnicalScorer struct{}

func (TechnicalScorer) Category() Category { return CategoryTechnical }

func (TechnicalScorer) Score(b *evidence.Bundle, jd *evidence.JobDescription) SubScore {
	b, jd = orEmpty(b, jd)
	out := SubScore{Category: CategoryTechnical}

	if len(jd.TechnicalTerms) == 0 {
		out.Value = maxScore
		out.Notes = []string{"job description lists no technical terms"}
		return out
	}

	matched, missing := splitTerms(jd.TechnicalTerms, b.HasSkill)

	out.Value = clampScore(maxScore * float64(len(matched)) / float64(len(jd.TechnicalTerms)))
	if len(matched) > 0 {
		out.Notes = append(out.Notes, "matched: "+strings.Join(matched, ", "))
	}
	if len(missing) > 0 {
		out.Notes = append(out.Notes, "missing: "+strings.Join(missing, ", "))
	}

	return out
}

// MissingSkills returns the job description's technical terms the candidate lacks.
func MissingSkills(b *evidence.Bundle, jd *evidence.JobDescription) []string {
	if b == nil || jd == nil {
		return nil
	}
	_, missing := splitTerms(jd.TechnicalTerms, b.HasSkill)
	return missing
}

func splitTerms(terms []string, has func(string) bool) (matched, missing []string) {
	for _, term := range terms {
		if has(term) {
			matched = append(matched, term)
		} else {
			missing = append(missing, term)
		}
	}
	return matched, missing
}
