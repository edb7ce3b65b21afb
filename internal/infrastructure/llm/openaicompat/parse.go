package openaicompat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

const (
	defaultConfidence = 0.8
	minQuestionLength = 10
	placeholderAnswer = "Answer will be generated based on document content."
)

var errNoJSONArray = errors.New("no JSON array in model response")

// parseQuestions decodes the model reply into candidates. Replies cut off by
// the token limit are repaired by closing the array after the last complete
// object.
func parseQuestions(raw string) ([]domain.QuestionCandidate, error) {
	payload, err := extractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("parse questions json: %w", err)
	}

	out := make([]domain.QuestionCandidate, 0, len(items))
	for _, item := range items {
		q, ok := normalizeItem(item)
		if ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func extractJSONArray(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "[")
	if start < 0 {
		return "", errNoJSONArray
	}
	if end := strings.LastIndex(s, "]"); end > start {
		return s[start : end+1], nil
	}
	lastBrace := strings.LastIndex(s, "}")
	if lastBrace <= start {
		return "", fmt.Errorf("%w: truncated before first object", errNoJSONArray)
	}
	return s[start:lastBrace+1] + "]", nil
}

func normalizeItem(item map[string]any) (domain.QuestionCandidate, bool) {
	question := stringField(item, "question", "Question")
	if utf8.RuneCountInString(question) <= minQuestionLength {
		return domain.QuestionCandidate{}, false
	}

	answer := stringField(item, "answer", "Answer", "solution")
	lower := strings.ToLower(answer)
	if answer == "" || strings.Contains(lower, "not provided") || strings.Contains(lower, "answer not") {
		answer = placeholderAnswer
	}

	topic := stringField(item, "topic", "Topic")
	if topic == "" {
		topic = domain.DefaultTopic
	}

	confidence := defaultConfidence
	if v, ok := numberField(item, "confidence", "Confidence"); ok {
		confidence = v
	}

	return domain.QuestionCandidate{
		Question:   question,
		Answer:     answer,
		Topic:      topic,
		Importance: domain.ParseImportance(stringField(item, "importance", "Importance")),
		Difficulty: domain.ParseDifficulty(stringField(item, "difficulty", "Difficulty")),
		Confidence: domain.ClampConfidence(confidence),
	}, true
}

func stringField(item map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := item[key]
		if !ok || v == nil {
			continue
		}
		switch typed := v.(type) {
		case string:
			if s := strings.TrimSpace(typed); s != "" {
				return s
			}
		case float64, bool:
			return fmt.Sprint(typed)
		}
	}
	return ""
}

func numberField(item map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch typed := item[key].(type) {
		case float64:
			return typed, true
		case string:
			if v, err := strconv.ParseFloat(strings.TrimSpace(typed), 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
