package report

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/fit-screener/internal/evidence"
)

const absentMarker = "\x00absent"

// FingerprintInput lists everything that determines a report.
type FingerprintInput struct {
	// ProjectID scopes the report; projects sharing a job description text
	// still get their own reports.
	ProjectID      string
	JobDescription string
	GitHubLogin    string
	Resume         string
	LinkedIn       string
	HasLinkedIn    bool
	// Profile holds the GitHub profile fields that feed the analysis.
	Profile      map[string]string
	Repositories []evidence.Repository
	// Readmes maps repository name to README text.
	Readmes        map[string]string
	Model          string
	ScoringVersion string
}

// Fingerprint returns the hex SHA-256 digest of the canonicalized input.
// Every field is length-prefixed, and maps and repositories are sorted, so the
// result depends only on content and not on ordering.
func Fingerprint(in FingerprintInput) string {
	h := sha256.New()

	writeField(h, "project", in.ProjectID)
	writeField(h, "jd", in.JobDescription)
	writeField(h, "login", strings.ToLower(strings.TrimSpace(in.GitHubLogin)))
	writeField(h, "resume", in.Resume)
	if in.HasLinkedIn {
		writeField(h, "linkedin", in.LinkedIn)
	} else {
		writeField(h, "linkedin", absentMarker)
	}

	writeMap(h, "profile", in.Profile)

	repos := make([]evidence.Repository, len(in.Repositories))
	copy(repos, in.Repositories)
	sort.SliceStable(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })

	writeField(h, "repos", strconv.Itoa(len(repos)))
	for _, repo := range repos {
		writeField(h, "repo.name", repo.Name)
		writeField(h, "repo.description", repo.Description)
		writeField(h, "repo.language", repo.Language)
		writeField(h, "repo.size", strconv.Itoa(repo.SizeKB))
		writeField(h, "repo.stars", strconv.Itoa(repo.Stars))
		writeField(h, "repo.fork", strconv.FormatBool(repo.Fork))
		writeField(h, "repo.created", formatTime(repo.CreatedAt))
		writeField(h, "repo.updated", formatTime(repo.UpdatedAt))
		writeField(h, "repo.pushed", formatTime(repo.PushedAt))
	}

	writeMap(h, "readmes", in.Readmes)

	writeField(h, "model", in.Model)
	writeField(h, "scoring", in.ScoringVersion)

	return hex.EncodeToString(h.Sum(nil))
}

func writeMap(h hash.Hash, label string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writeField(h, label, strconv.Itoa(len(keys)))
	for _, k := range keys {
		writeField(h, label+".key", k)
		writeField(h, label+".value", m[k])
	}
}

func writeField(h hash.Hash, label, value string) {
	var size [8]byte
	for _, part := range []string{label, value} {
		binary.BigEndian.PutUint64(size[:], uint64(len(part)))
		h.Write(size[:])
		h.Write([]byte(part))
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
