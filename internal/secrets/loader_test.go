package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	got, err := Load(Source{Name: "api key", File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected secret from file, got %q", got)
	}
}

func TestLoadValueThenEnv(t *testing.T) {
	t.Setenv("CAREER_ADVISOR_TEST_KEY", " from-env ")

	got, err := Load(Source{Name: "api key", Value: " inline ", Env: "CAREER_ADVISOR_TEST_KEY"})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline value, got %q (%v)", got, err)
	}

	got, err = Load(Source{Name: "api key", Env: "CAREER_ADVISOR_TEST_KEY"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env value, got %q (%v)", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("CAREER_ADVISOR_EMPTY_KEY", "")

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"missing file", Source{Name: "gemini api key", File: filepath.Join(t.TempDir(), "nope")}, "reading gemini api key"},
		{"empty file", Source{Name: "gemini api key", File: empty}, "is empty"},
		{"unset env", Source{Name: "openai api key", Env: "CAREER_ADVISOR_EMPTY_KEY"}, "set CAREER_ADVISOR_EMPTY_KEY"},
		{"nothing", Source{}, "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}
