package scoring

import (
	"strings"

	"github.com/spigell/fit-screener/internal/evidence"
)

// DomainScorer scores how many of the job description's domain terms show up
// anywhere in the candidate's evidence.
type DomainScorer struct{}

func (DomainScorer) Category() Category { return CategoryDomain }

func (DomainScorer) Score(b *evidence.Bundle, jd *evidence.JobDescription) SubScore {
	b, jd = orEmpty(b, jd)
	out := SubScore{Category: CategoryDomain}

	if len(jd.DomainTerms) == 0 {
		out.Value = maxScore
		out.Notes = []string{"job description has no domain requirement"}
		return out
	}

	present, absent := splitTerms(jd.DomainTerms, b.HasDomainTerm)

	out.Value = clampScore(maxScore * float64(len(present)) / float64(len(jd.DomainTerms)))
	if len(present) > 0 {
		out.Notes = append(out.Notes, "present: "+strings.Join(present, ", "))
	}
	if len(absent) > 0 {
		out.Notes = append(out.Notes, "absent: "+strings.Join(absent, ", "))
	}

	return out
}
