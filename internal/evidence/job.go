package evidence

import (
	"regexp"
	"strconv"
)

// JobDescription is the normalized view of a project's job description.
// Term slices hold sorted, de-duplicated canonical names.
type JobDescription struct {
	Text           string   `json:"text"`
	TechnicalTerms []string `json:"technical_terms"`
	DomainTerms    []string `json:"domain_terms"`
	MinYears       int      `json:"min_years,omitempty"`
	HasMinYears    bool     `json:"has_min_years"`
}

const maxPlausibleYears = 50

var yearsMentionRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)

// ParseJobDescription derives the technical terms, domain terms and minimum
// years requirement from free text using the given vocabularies.
func ParseJobDescription(text string, skills, domains *Vocabulary) *JobDescription {
	tokens := Tokenize(text)

	jd := &JobDescription{
		Text:           text,
		TechnicalTerms: sortedSet(skills.MatchTokens(tokens, nil)),
		DomainTerms:    sortedSet(domains.MatchTokens(tokens, nil)),
	}

	if years, ok := maxYearsMention(text); ok {
		jd.MinYears = years
		jd.HasMinYears = true
	}

	return jd
}

// NewJobDescription builds a job description from explicit term lists.
// Terms are lower-cased and de-duplicated.
func NewJobDescription(text string, technical, domain []string) *JobDescription {
	return &JobDescription{
		Text:           text,
		TechnicalTerms: normalizeSet(technical),
		DomainTerms:    normalizeSet(domain),
	}
}

// WithMinYears returns a copy of the job description requiring the given years.
func (jd *JobDescription) WithMinYears(years int) *JobDescription {
	cp := *jd
	cp.MinYears = years
	cp.HasMinYears = years > 0
	return &cp
}

// maxYearsMention returns the largest plausible "N years" mention in text.
func maxYearsMention(text string) (int, bool) {
	best := 0
	for _, m := range yearsMentionRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n > maxPlausibleYears {
			continue
		}
		if n > best {
			best = n
		}
	}
	return best, best > 0
}
