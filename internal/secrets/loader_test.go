package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSecret(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	return path
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("FIT_SCREENER_TEST_SECRET", " from-env ")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{
			name:   "file wins",
			src:    Source{File: writeSecret(t, "from-file\n"), Value: "inline", Env: "FIT_SCREENER_TEST_SECRET"},
			expect: "from-file",
		},
		{
			name:   "inline before env",
			src:    Source{Value: " inline ", Env: "FIT_SCREENER_TEST_SECRET"},
			expect: "inline",
		},
		{
			name:   "env fallback",
			src:    Source{Env: "FIT_SCREENER_TEST_SECRET"},
			expect: "from-env",
		},
		{
			name:   "optional and unset",
			src:    Source{Env: "FIT_SCREENER_TEST_UNSET", Optional: true},
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		message string
	}{
		{
			name:    "missing file",
			src:     Source{Name: "github token", File: filepath.Join(t.TempDir(), "absent")},
			message: "reading github token from file",
		},
		{
			name:    "empty file even when optional",
			src:     Source{Name: "github token", File: writeSecret(t, " \n"), Optional: true},
			message: "is empty",
		},
		{
			name:    "nothing configured",
			src:     Source{Name: "gemini api key", Env: "FIT_SCREENER_TEST_UNSET"},
			message: "set FIT_SCREENER_TEST_UNSET",
		},
		{
			name:    "default name",
			src:     Source{},
			message: "secret is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected %q in %q", tt.message, err.Error())
			}
		})
	}
}
