package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPDFTextRejectsEmptyInput(t *testing.T) {
	if _, err := PDFText(nil); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestPDFTextRejectsGarbage(t *testing.T) {
	if _, err := PDFText([]byte("definitely not a pdf")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		expect  string
		wantErr bool
	}{
		{name: "plain text", file: "resume.txt", content: "  Go developer\r\n5 years  ", expect: "Go developer\n5 years"},
		{name: "empty text", file: "empty.md", content: " \n ", wantErr: true},
		{name: "broken pdf", file: "resume.PDF", content: "%PDF-1.4 truncated", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			got, err := ReadFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}
