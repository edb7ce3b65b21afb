package domain

import (
	"math"
	"strings"
)

type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const (
	MinConfidence = 0.3
	MaxConfidence = 0.95

	DefaultTopic = "General"
)

type QuestionCandidate struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Topic      string     `json:"topic"`
	Importance Importance `json:"importance"`
	Difficulty Difficulty `json:"difficulty"`
	Confidence float64    `json:"confidence"`
}

// ClampConfidence bounds a confidence into [MinConfidence, MaxConfidence].
func ClampConfidence(v float64) float64 {
	if math.IsNaN(v) || v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

func ParseImportance(raw string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(raw))) {
	case ImportanceHigh:
		return ImportanceHigh
	case ImportanceLow:
		return ImportanceLow
	default:
		return ImportanceMedium
	}
}

func ParseDifficulty(raw string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// KeywordRule maps a label to keywords that trigger it.
type KeywordRule struct {
	Label    string   `yaml:"label" json:"label"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// ClassificationRules drives topic, importance and difficulty inference.
type ClassificationRules struct {
	Topics            []KeywordRule
	DefaultTopic      string
	Importance        []KeywordRule
	DefaultImportance Importance
	Difficulty        []KeywordRule
	DefaultDifficulty Difficulty
}
