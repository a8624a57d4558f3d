package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStudy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write study file: %v", err)
	}
	return path
}

func TestLoadStudy(t *testing.T) {
	path := writeStudy(t, `
prompts:
  - "Round1?"
  - "Round2?"
codes: [P042, P043]
max_hashtag_length: 32
withdraw_enabled: true
messages:
  done: "Thanks, that's everything."
`)
	s, err := LoadStudy(path)
	if err != nil {
		t.Fatalf("LoadStudy: %v", err)
	}
	if s.TotalRounds() != 2 {
		t.Fatalf("TotalRounds = %d, want 2", s.TotalRounds())
	}
	if len(s.Codes) != 2 || s.Codes[0] != "P042" {
		t.Fatalf("codes = %v", s.Codes)
	}
	if s.MaxHashtagLength != 32 || !s.WithdrawEnabled {
		t.Fatalf("parsed flags: max=%d withdraw=%v", s.MaxHashtagLength, s.WithdrawEnabled)
	}
	if s.Messages.Done != "Thanks, that's everything." {
		t.Fatalf("message override lost: %q", s.Messages.Done)
	}
	if s.CodePattern != "" {
		t.Fatalf("unset code_pattern = %q, want empty (default applied later)", s.CodePattern)
	}
}

func TestLoadStudyRequiresPrompts(t *testing.T) {
	path := writeStudy(t, "codes: [P042]\n")
	if _, err := LoadStudy(path); err == nil {
		t.Fatalf("LoadStudy without prompts succeeded")
	}
}

func TestLoadStudyRejectsBlankPrompt(t *testing.T) {
	path := writeStudy(t, "prompts:\n  - \"Round1?\"\n  - \"   \"\n")
	if _, err := LoadStudy(path); err == nil {
		t.Fatalf("LoadStudy with blank prompt succeeded")
	}
}

func TestLoadStudyRejectsNonBcryptHash(t *testing.T) {
	path := writeStudy(t, "prompts: [\"Round1?\"]\ncode_hashes: [plainP042]\n")
	if _, err := LoadStudy(path); err == nil {
		t.Fatalf("LoadStudy with non-bcrypt hash succeeded")
	}
}

func TestLoadStudyMissingFile(t *testing.T) {
	if _, err := LoadStudy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("LoadStudy on missing file succeeded")
	}
}

func TestSafeEnv(t *testing.T) {
	t.Setenv("HASHBOT_TEST_KEY", "")
	if got := SafeEnv("HASHBOT_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("SafeEnv empty = %q, want fallback", got)
	}
	t.Setenv("HASHBOT_TEST_KEY", "set")
	if got := SafeEnv("HASHBOT_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("SafeEnv set = %q", got)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HASHBOT_ADDR", "")
	t.Setenv("HASHBOT_STUDY_CONFIG", "")
	t.Setenv("HASHBOT_CSV_PATH", "")
	app := FromEnv()
	if app.OpsAddr != ":8080" {
		t.Fatalf("OpsAddr default = %q", app.OpsAddr)
	}
	if app.StudyPath != "study.yaml" || app.CSVPath != "hashtag_study.csv" {
		t.Fatalf("path defaults = %q, %q", app.StudyPath, app.CSVPath)
	}
}
