package evidence

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sources holds the already-fetched raw inputs of one analysis run.
// Every field is optional.
type Sources struct {
	Resume       string
	LinkedIn     string
	Bio          string
	Repositories []Repository
	// Readmes maps repository name to README text.
	Readmes map[string]string
}

// Extractor turns raw sources into an evidence Bundle.
type Extractor struct {
	Skills  *Vocabulary
	Domains *Vocabulary
	// Now is the reference time for open-ended date ranges ("2019 - present").
	Now func() time.Time
}

// NewExtractor returns an extractor using the default vocabularies.
func NewExtractor() *Extractor {
	return &Extractor{
		Skills:  DefaultSkills(),
		Domains: DefaultDomains(),
		Now:     time.Now,
	}
}

// ParseJobDescription parses text with the extractor's vocabularies so that
// both sides of the comparison use the same terms.
func (e *Extractor) ParseJobDescription(text string) *JobDescription {
	return ParseJobDescription(text, e.Skills, e.Domains)
}

// Extract builds the evidence bundle. Missing inputs contribute nothing and
// are recorded in the bundle notes.
func (e *Extractor) Extract(src Sources) *Bundle {
	var notes []string

	if strings.TrimSpace(src.Resume) == "" {
		notes = append(notes, "resume: no text")
	}
	if strings.TrimSpace(src.LinkedIn) == "" {
		notes = append(notes, "linkedin: not provided")
	}
	if len(src.Repositories) == 0 {
		notes = append(notes, "github: no public repositories")
	}

	repos := make([]Repository, 0, len(src.Repositories))
	for _, repo := range src.Repositories {
		if strings.TrimSpace(src.Readmes[repo.Name]) != "" {
			repo.HasReadme = true
		}
		repos = append(repos, repo)
	}

	readmes := orderedReadmes(src.Readmes)

	skills := make(map[string]struct{})
	domains := make(map[string]struct{})

	for _, text := range []string{src.Resume, src.LinkedIn, src.Bio} {
		tokens := Tokenize(text)
		e.Skills.MatchTokens(tokens, skills)
		e.Domains.MatchTokens(tokens, domains)
	}
	for _, repo := range repos {
		e.Skills.MatchTokens(Tokenize(repo.Name+" "+repo.Language), skills)
		desc := Tokenize(repo.Description)
		e.Skills.MatchTokens(desc, skills)
		e.Domains.MatchTokens(desc, domains)
	}
	for _, text := range readmes {
		tokens := Tokenize(text)
		e.Skills.MatchTokens(tokens, skills)
		e.Domains.MatchTokens(tokens, domains)
	}

	spec := BundleSpec{
		Skills:       sortedSet(skills),
		DomainHits:   sortedSet(domains),
		Repositories: repos,
	}

	now := e.now()
	if years, ok := ExtractYears(src.Resume, now); ok {
		spec.Years, spec.HasYears = years, true
	} else if years, ok := ExtractYears(src.LinkedIn, now); ok {
		spec.Years, spec.HasYears = years, true
	} else {
		notes = append(notes, "years: not found in resume or linkedin")
	}

	if span, ok := ActivitySpan(repos); ok {
		spec.ActivityYears, spec.HasActivityYears = span, true
	}

	spec.Notes = notes
	return NewBundle(spec)
}

func (e *Extractor) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func orderedReadmes(readmes map[string]string) []string {
	names := make([]string, 0, len(readmes))
	for name := range readmes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, readmes[name])
	}
	return out
}

var yearRangeRe = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*(?:-|–|—|to)\s*((?:19|20)\d{2}|present|current|now|today)\b`)

// ExtractYears estimates years of experience from free text. Explicit
// mentions ("5+ years") win; otherwise the span covered by year ranges
// ("2016 - 2021", "2019 - present") is used, measured against now.
func ExtractYears(text string, now time.Time) (int, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	if years, ok := maxYearsMention(text); ok {
		return years, true
	}

	earliest, latest := 0, 0
	for _, m := range yearRangeRe.FindAllStringSubmatch(text, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		end := now.Year()
		if n, err := strconv.Atoi(m[2]); err == nil {
			end = n
		}
		if end < start || end > now.Year() {
			continue
		}

		if earliest == 0 || start < earliest {
			earliest = start
		}
		if end > latest {
			latest = end
		}
	}

	if earliest == 0 || latest <= earliest {
		return 0, false
	}

	span := latest - earliest
	if span > maxPlausibleYears {
		return 0, false
	}
	return span, true
}

const yearDuration = 365.25 * 24 * time.Hour

// ActivitySpan returns the whole years between the earliest repository
// creation and the most recent push or update.
func ActivitySpan(repos []Repository) (int, bool) {
	var first, last time.Time
	for _, repo := range repos {
		if !repo.CreatedAt.IsZero() && (first.IsZero() || repo.CreatedAt.Before(first)) {
			first = repo.CreatedAt
		}
		for _, t := range []time.Time{repo.PushedAt, repo.UpdatedAt} {
			if t.After(last) {
				last = t
			}
		}
	}

	if first.IsZero() || last.IsZero() || last.Before(first) {
		return 0, false
	}

	return int(last.Sub(first) / yearDuration), true
}
