// Package config loads process configuration from the environment and the
// study definition from a YAML file. Both are read once at startup and
// immutable afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openfieldlab/hashbot/internal/study"
)

// SafeEnv returns the environment variable value for key, or fallback if
// empty.
func SafeEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// App is the process-level configuration, from the environment.
type App struct {
	TelegramToken string
	OpsAddr       string
	StudyPath     string
	CSVPath       string
	SQLitePath    string
	Commit        string
	BuildTime     string
}

func FromEnv() App {
	return App{
		TelegramToken: os.Getenv("HASHBOT_TELEGRAM_TOKEN"),
		OpsAddr:       SafeEnv("HASHBOT_ADDR", ":8080"),
		StudyPath:     SafeEnv("HASHBOT_STUDY_CONFIG", "study.yaml"),
		CSVPath:       SafeEnv("HASHBOT_CSV_PATH", "hashtag_study.csv"),
		SQLitePath:    os.Getenv("HASHBOT_SQLITE_PATH"),
		Commit:        os.Getenv("HASHBOT_COMMIT"),
		BuildTime:     os.Getenv("HASHBOT_BUILD_TIME"),
	}
}

// Study is the per-deployment study definition. The prompt list fixes the
// number of rounds for the process lifetime.
type Study struct {
	Prompts          []string       `yaml:"prompts"`
	Codes            []string       `yaml:"codes"`
	CodeHashes       []string       `yaml:"code_hashes"`
	CodePattern      string         `yaml:"code_pattern"`
	MaxHashtagLength int            `yaml:"max_hashtag_length"`
	WithdrawEnabled  bool           `yaml:"withdraw_enabled"`
	Messages         study.Messages `yaml:"messages"`
}

// TotalRounds is the number of prompts.
func (s *Study) TotalRounds() int { return len(s.Prompts) }

// LoadStudy reads and validates the study YAML at path.
func LoadStudy(path string) (*Study, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read study config: %w", err)
	}
	var s Study
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse study config: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("study config %s: %w", path, err)
	}
	return &s, nil
}

func (s *Study) validate() error {
	if len(s.Prompts) == 0 {
		return errors.New("at least one prompt is required")
	}
	for i, p := range s.Prompts {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("prompt %d is empty", i)
		}
	}
	if s.MaxHashtagLength < 0 {
		return errors.New("max_hashtag_length must not be negative")
	}
	for i, h := range s.CodeHashes {
		if !strings.HasPrefix(h, "$2") {
			return fmt.Errorf("code_hashes[%d] is not a bcrypt hash", i)
		}
	}
	return nil
}
