package evidence

import (
	"sort"
	"strings"
)

// Term is a canonical vocabulary entry with optional spellings that map onto it.
type Term struct {
	Name    string
	Aliases []string
	// AliasesOnly keeps Name from matching on its own. Used for names that are
	// also everyday words ("go", "spring", "energy").
	AliasesOnly bool
}

// Vocabulary matches curated terms against tokenized text.
// Entries are tokenized with the same tokenizer as the text they are matched
// against, so the job description and the candidate evidence stay comparable.
type Vocabulary struct {
	phrases map[string]string
	maxLen  int
}

// NewVocabulary builds a vocabulary from the given terms.
func NewVocabulary(terms ...Term) *Vocabulary {
	v := &Vocabulary{phrases: make(map[string]string, len(terms)*2)}
	for _, term := range terms {
		name := normalizeTerm(term.Name)
		if name == "" {
			continue
		}
		if !term.AliasesOnly {
			v.add(name, name)
		}
		for _, alias := range term.Aliases {
			v.add(alias, name)
		}
	}
	return v
}

func (v *Vocabulary) add(spelling, canonical string) {
	tokens := Tokenize(spelling)
	if len(tokens) == 0 {
		return
	}
	v.phrases[strings.Join(tokens, " ")] = canonical
	if len(tokens) > v.maxLen {
		v.maxLen = len(tokens)
	}
}

// Len returns the number of distinct spellings known to the vocabulary.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.phrases)
}

// Canonical resolves a single term (e.g. "Golang") to its canonical name.
func (v *Vocabulary) Canonical(term string) (string, bool) {
	if v == nil {
		return "", false
	}
	tokens := Tokenize(term)
	if len(tokens) == 0 {
		return "", false
	}
	name, ok := v.phrases[strings.Join(tokens, " ")]
	return name, ok
}

// MatchTokens returns the set of canonical terms found in the token stream.
func (v *Vocabulary) MatchTokens(tokens []string, into map[string]struct{}) map[string]struct{} {
	if into == nil {
		into = make(map[string]struct{})
	}
	if v == nil || len(v.phrases) == 0 {
		return into
	}

	for i := range tokens {
		for n := 1; n <= v.maxLen && i+n <= len(tokens); n++ {
			key := strings.Join(tokens[i:i+n], " ")
			if name, ok := v.phrases[key]; ok {
				into[name] = struct{}{}
			}
		}
	}

	return into
}

// Match returns the sorted canonical terms found in text.
func (v *Vocabulary) Match(text string) []string {
	return sortedSet(v.MatchTokens(Tokenize(text), nil))
}

// DefaultSkills returns the curated technical-term vocabulary.
func DefaultSkills() *Vocabulary {
	return NewVocabulary(
		Term{Name: "python"},
		Term{Name: "java"},
		Term{Name: "c++", Aliases: []string{"cpp"}},
		Term{Name: "c#", Aliases: []string{"csharp"}},
		Term{Name: "go", Aliases: []string{"golang", "go lang", "go language"}, AliasesOnly: true},
		Term{Name: "rust"},
		Term{Name: "ruby"},
		Term{Name: "php"},
		Term{Name: "scala"},
		Term{Name: "kotlin"},
		Term{Name: "swift", Aliases: []string{"swiftui", "swift language"}, AliasesOnly: true},
		Term{Name: "javascript", Aliases: []string{"js", "ecmascript"}},
		Term{Name: "typescript"},
		Term{Name: "html", Aliases: []string{"html5"}},
		Term{Name: "css", Aliases: []string{"css3"}},
		Term{Name: "react", Aliases: []string{"react.js", "reactjs"}},
		Term{Name: "angular", Aliases: []string{"angularjs"}},
		Term{Name: "vue", Aliases: []string{"vue.js", "vuejs"}},
		Term{Name: "next.js", Aliases: []string{"nextjs"}},
		Term{Name: "node.js", Aliases: []string{"nodejs"}},
		Term{Name: "express", Aliases: []string{"express.js", "expressjs"}, AliasesOnly: true},
		Term{Name: "fastapi"},
		Term{Name: "django"},
		Term{Name: "flask"},
		Term{Name: "spring", Aliases: []string{"spring boot", "spring framework", "spring mvc"}, AliasesOnly: true},
		Term{Name: "docker"},
		Term{Name: "kubernetes", Aliases: []string{"k8s"}},
		Term{Name: "aws", Aliases: []string{"amazon web services"}},
		Term{Name: "azure"},
		Term{Name: "gcp", Aliases: []string{"google cloud", "google cloud platform"}},
		Term{Name: "terraform"},
		Term{Name: "ansible"},
		Term{Name: "linux"},
		Term{Name: "git"},
		Term{Name: "ci/cd", Aliases: []string{"cicd", "continuous integration"}},
		Term{Name: "sql"},
		Term{Name: "postgresql", Aliases: []string{"postgres"}},
		Term{Name: "mysql"},
		Term{Name: "sqlite"},
		Term{Name: "mongodb", Aliases: []string{"mongo"}},
		Term{Name: "redis"},
		Term{Name: "elasticsearch", Aliases: []string{"elastic search"}},
		Term{Name: "kafka"},
		Term{Name: "rabbitmq"},
		Term{Name: "graphql"},
		Term{Name: "grpc"},
		Term{Name: "rest api", Aliases: []string{"restful", "rest apis", "restful api"}},
		Term{Name: "microservices", Aliases: []string{"microservice"}},
		Term{Name: "machine learning", Aliases: []string{"ml"}},
		Term{Name: "deep learning"},
		Term{Name: "pytorch", Aliases: []string{"torch"}},
		Term{Name: "tensorflow"},
		Term{Name: "scikit-learn", Aliases: []string{"sklearn"}},
		Term{Name: "pandas"},
		Term{Name: "numpy"},
		Term{Name: "spark", Aliases: []string{"apache spark", "pyspark"}},
		Term{Name: "airflow"},
		Term{Name: "agile"},
		Term{Name: "scrum"},
	)
}

// DefaultDomains returns the curated industry and vertical vocabulary.
func DefaultDomains() *Vocabulary {
	return NewVocabulary(
		Term{Name: "fintech"},
		Term{Name: "payments", Aliases: []string{"payment"}},
		Term{Name: "banking"},
		Term{Name: "insurance", Aliases: []string{"insurtech"}},
		Term{Name: "trading"},
		Term{Name: "healthcare", Aliases: []string{"health care", "healthtech"}},
		Term{Name: "biotech", Aliases: []string{"biotechnology"}},
		Term{Name: "e-commerce", Aliases: []string{"ecommerce"}},
		Term{Name: "retail", Aliases: []string{"retail industry", "retailtech"}, AliasesOnly: true},
		Term{Name: "marketplace", Aliases: []string{"marketplaces"}},
		Term{Name: "logistics"},
		Term{Name: "supply chain"},
		Term{Name: "edtech"},
		Term{Name: "adtech", Aliases: []string{"ad tech", "advertising technology"}},
		Term{Name: "gaming", Aliases: []string{"game development", "gamedev", "video games"}, AliasesOnly: true},
		Term{Name: "blockchain", Aliases: []string{"web3"}},
		Term{Name: "crypto", Aliases: []string{"cryptocurrency"}},
		Term{Name: "cybersecurity", Aliases: []string{"infosec"}},
		Term{Name: "telecom", Aliases: []string{"telecommunications"}},
		Term{Name: "automotive"},
		Term{Name: "robotics"},
		Term{Name: "aerospace"},
		Term{Name: "energy", Aliases: []string{"energy sector", "renewable energy", "energytech", "cleantech"}, AliasesOnly: true},
		Term{Name: "real estate", Aliases: []string{"proptech"}},
		Term{Name: "travel", Aliases: []string{"traveltech", "travel industry", "travel booking"}, AliasesOnly: true},
		Term{Name: "saas"},
		Term{Name: "streaming", Aliases: []string{"video streaming", "streaming media", "music streaming"}, AliasesOnly: true},
		Term{Name: "legaltech"},
	)
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeSet(terms []string) []string {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if t = normalizeTerm(t); t != "" {
			set[t] = struct{}{}
		}
	}
	return sortedSet(set)
}
