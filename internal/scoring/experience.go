package scoring

import (
	"fmt"

	"github.com/spigell/fit-screener/internal/evidence"
)

const (
	// NeutralExperienceScore is used when nothing can be said about experience.
	NeutralExperienceScore = 70.0
	// activityBonusPerYear rewards GitHub activity when the job states no requirement.
	activityBonusPerYear = 5.0
	activityBonusCap     = 6
)

// ExperienceScorer compares the candidate's years of experience with the job
// description's minimum requirement.
type ExperienceScorer struct{}

func (ExperienceScorer) Category() Category { return CategoryExperience }

func (ExperienceScorer) Score(b *evidence.Bundle, jd *evidence.JobDescription) SubScore {
	b, jd = orEmpty(b, jd)
	out := SubScore{Category: CategoryExperience}

	if !jd.HasMinYears || jd.MinYears <= 0 {
		out.Value, out.Notes = withoutRequirement(b)
		return out
	}

	years, source, ok := candidateYears(b)
	if !ok {
		out.Value = NeutralExperienceScore
		out.Notes = []string{fmt.Sprintf("requires %d years; candidate years unknown, using neutral baseline", jd.MinYears)}
		return out
	}

	required := float64(jd.MinYears)
	have := float64(years)
	note := fmt.Sprintf("requires %d years; candidate has %d (%s)", jd.MinYears, years, source)

	if have >= required {
		out.Value = maxScore
		out.Notes = []string{note}
		return out
	}

	// Linear from 0 at half the requirement up to 100 at the requirement.
	half := required / 2
	out.Value = clampScore(maxScore * (have - half) / half)
	out.Notes = []string{note}

	return out
}

func candidateYears(b *evidence.Bundle) (int, string, bool) {
	if years, ok := b.Years(); ok {
		return years, "documents", true
	}
	if years, ok := b.ActivityYears(); ok {
		return years, "github activity", true
	}
	return 0, "", false
}

func withoutRequirement(b *evidence.Bundle) (float64, []string) {
	span, ok := b.ActivityYears()
	if !ok {
		return NeutralExperienceScore, []string{"no years requirement; no github activity span"}
	}

	bonus := min(span, activityBonusCap)
	value := clampScore(NeutralExperienceScore + activityBonusPerYear*float64(bonus))

	return value, []string{fmt.Sprintf("no years requirement; github activity spans %d years", span)}
}
