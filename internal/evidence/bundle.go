package evidence

import (
	"slices"
	"time"
)

// Repository holds the metrics of a single public repository.
type Repository struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	SizeKB      int       `json:"size_kb"`
	Stars       int       `json:"stars"`
	HasReadme   bool      `json:"has_readme"`
	Fork        bool      `json:"fork,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
	PushedAt    time.Time `json:"pushed_at,omitzero"`
}

// BundleSpec describes the contents of a Bundle.
type BundleSpec struct {
	Skills           []string
	Years            int
	HasYears         bool
	ActivityYears    int
	HasActivityYears bool
	Repositories     []Repository
	DomainHits       []string
	Notes            []string
}

// Bundle is the immutable evidence gathered for one analysis run.
// Accessors return copies; the bundle never changes after construction.
type Bundle struct {
	skills           []string
	skillSet         map[string]struct{}
	years            int
	hasYears         bool
	activityYears    int
	hasActivityYears bool
	repos            []Repository
	domainHits       []string
	domainSet        map[string]struct{}
	notes            []string
}

// NewBundle builds a Bundle, normalizing the set-valued fields.
func NewBundle(spec BundleSpec) *Bundle {
	b := &Bundle{
		skills:           normalizeSet(spec.Skills),
		years:            spec.Years,
		hasYears:         spec.HasYears && spec.Years >= 0,
		activityYears:    spec.ActivityYears,
		hasActivityYears: spec.HasActivityYears && spec.ActivityYears >= 0,
		repos:            slices.Clone(spec.Repositories),
		domainHits:       normalizeSet(spec.DomainHits),
		notes:            slices.Clone(spec.Notes),
	}

	b.skillSet = toSet(b.skills)
	b.domainSet = toSet(b.domainHits)

	return b
}

// Skills returns the sorted candidate skill tokens.
func (b *Bundle) Skills() []string { return slices.Clone(b.skills) }

// HasSkill reports whether the canonical skill is present.
func (b *Bundle) HasSkill(skill string) bool {
	_, ok := b.skillSet[normalizeTerm(skill)]
	return ok
}

// Years returns the years-of-experience estimate taken from the candidate's documents.
func (b *Bundle) Years() (int, bool) { return b.years, b.hasYears }

// ActivityYears returns the span of public GitHub activity in whole years.
func (b *Bundle) ActivityYears() (int, bool) { return b.activityYears, b.hasActivityYears }

// Repositories returns the repository metrics.
func (b *Bundle) Repositories() []Repository { return slices.Clone(b.repos) }

// DomainHits returns the sorted domain terms found in the candidate's evidence.
func (b *Bundle) DomainHits() []string { return slices.Clone(b.domainHits) }

// HasDomainTerm reports whether the domain term appears in the candidate's evidence.
func (b *Bundle) HasDomainTerm(term string) bool {
	_, ok := b.domainSet[normalizeTerm(term)]
	return ok
}

// Notes returns remarks about missing or degraded inputs.
func (b *Bundle) Notes() []string { return slices.Clone(b.notes) }

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
