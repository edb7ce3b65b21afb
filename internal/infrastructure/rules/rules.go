// Package rules loads the keyword tables used to tag questions with a topic,
// importance and difficulty.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

//go:embed default.yaml
var defaultTable []byte

type labelledRules struct {
	Default string               `yaml:"default"`
	Rules   []domain.KeywordRule `yaml:"rules"`
}

type table struct {
	DefaultTopic string               `yaml:"default_topic"`
	Topics       []domain.KeywordRule `yaml:"topics"`
	Importance   labelledRules        `yaml:"importance"`
	Difficulty   labelledRules        `yaml:"difficulty"`
}

// Load reads a rule table from path, or the embedded table when path is empty.
func Load(path string) (domain.ClassificationRules, error) {
	raw := defaultTable
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.ClassificationRules{}, fmt.Errorf("read rules file: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

// Default returns the embedded rule table.
func Default() domain.ClassificationRules {
	rules, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded rules table is invalid: %v", err))
	}
	return rules
}

func Parse(raw []byte) (domain.ClassificationRules, error) {
	var t table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return domain.ClassificationRules{}, domain.WrapError(domain.ErrInvalidInput, "parse rules", err)
	}
	if err := validate(t); err != nil {
		return domain.ClassificationRules{}, domain.WrapError(domain.ErrInvalidInput, "validate rules", err)
	}

	rules := domain.ClassificationRules{
		Topics:            t.Topics,
		DefaultTopic:      strings.TrimSpace(t.DefaultTopic),
		Importance:        t.Importance.Rules,
		DefaultImportance: domain.ParseImportance(t.Importance.Default),
		Difficulty:        t.Difficulty.Rules,
		DefaultDifficulty: domain.ParseDifficulty(t.Difficulty.Default),
	}
	if rules.DefaultTopic == "" {
		rules.DefaultTopic = domain.DefaultTopic
	}
	return rules, nil
}

func validate(t table) error {
	if len(t.Topics) == 0 {
		return errors.New("at least one topic is required")
	}
	for _, topic := range t.Topics {
		if strings.TrimSpace(topic.Label) == "" {
			return errors.New("topic label is required")
		}
		if len(topic.Keywords) == 0 {
			return fmt.Errorf("topic %q has no keywords", topic.Label)
		}
	}
	for _, rule := range t.Importance.Rules {
		if string(domain.ParseImportance(rule.Label)) != strings.ToLower(strings.TrimSpace(rule.Label)) {
			return fmt.Errorf("unknown importance %q", rule.Label)
		}
	}
	for _, rule := range t.Difficulty.Rules {
		if string(domain.ParseDifficulty(rule.Label)) != strings.ToLower(strings.TrimSpace(rule.Label)) {
			return fmt.Errorf("unknown difficulty %q", rule.Label)
		}
	}
	return nil
}
