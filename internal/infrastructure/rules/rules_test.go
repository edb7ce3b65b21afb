package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

func TestDefaultTableLoads(t *testing.T) {
	rules := Default()
	if rules.DefaultTopic != "General" {
		t.Fatalf("expected General default topic, got %q", rules.DefaultTopic)
	}
	labels := map[string]bool{}
	for _, topic := range rules.Topics {
		labels[topic.Label] = true
	}
	for _, want := range []string{"Mathematics", "Physics", "Chemistry", "Biology"} {
		if !labels[want] {
			t.Fatalf("expected topic %q in default table", want)
		}
	}
	if rules.DefaultImportance != domain.ImportanceMedium || rules.DefaultDifficulty != domain.DifficultyMedium {
		t.Fatalf("expected medium defaults, got %s/%s", rules.DefaultImportance, rules.DefaultDifficulty)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte(`
topics:
  - label: Music
    keywords: [chord, scale]
importance:
  default: low
difficulty:
  rules:
    - label: hard
      keywords: [compose]
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rules.DefaultTopic != domain.DefaultTopic {
		t.Fatalf("expected fallback default topic, got %q", rules.DefaultTopic)
	}
	if rules.DefaultImportance != domain.ImportanceLow {
		t.Fatalf("expected low default importance, got %s", rules.DefaultImportance)
	}
	if len(rules.Difficulty) != 1 || rules.Difficulty[0].Label != "hard" {
		t.Fatalf("unexpected difficulty rules: %+v", rules.Difficulty)
	}
}

func TestParseRejectsUnknownLabels(t *testing.T) {
	_, err := Parse([]byte(`
topics:
  - label: Music
    keywords: [chord]
importance:
  rules:
    - label: critical
      keywords: [prove]
`))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseRejectsEmptyTopics(t *testing.T) {
	if _, err := Parse([]byte("default_topic: General\n")); err == nil {
		t.Fatalf("expected error for missing topics")
	}
}
