package usecase

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

// questionClassifier applies keyword rule tables. Single-word keywords match
// whole tokens, a trailing '*' matches a token prefix, and multi-word keywords
// match a token sequence.
type questionClassifier struct {
	rules domain.ClassificationRules
}

func newQuestionClassifier(rules domain.ClassificationRules) questionClassifier {
	if strings.TrimSpace(rules.DefaultTopic) == "" {
		rules.DefaultTopic = domain.DefaultTopic
	}
	if rules.DefaultImportance == "" {
		rules.DefaultImportance = domain.ImportanceMedium
	}
	if rules.DefaultDifficulty == "" {
		rules.DefaultDifficulty = domain.DifficultyMedium
	}
	return questionClassifier{rules: rules}
}

// classify tags one pair. A topic taken from the filename applies to every
// pair; otherwise the pair's own keywords win over the document-wide topic.
func (c questionClassifier) classify(p rawPair, doc documentTopic) domain.QuestionCandidate {
	topic := doc.label
	if !doc.fromFilename {
		if own := c.bestTopic(tokenize(p.question+" "+p.answer), ""); own != "" {
			topic = own
		}
	}
	return domain.QuestionCandidate{
		Question:   p.question,
		Answer:     p.answer,
		Topic:      topic,
		Importance: domain.ParseImportance(c.firstMatch(c.rules.Importance, p.question, string(c.rules.DefaultImportance))),
		Difficulty: domain.ParseDifficulty(c.firstMatch(c.rules.Difficulty, p.question, string(c.rules.DefaultDifficulty))),
		Confidence: domain.ClampConfidence(adjustConfidence(p)),
	}
}

type documentTopic struct {
	label        string
	fromFilename bool
}

// topic picks the document-level subject: a filename hit wins, otherwise the
// topic with most keyword hits in the text.
func (c questionClassifier) topic(filename, text string) documentTopic {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	nameTokens := tokenize(base)
	for _, rule := range c.rules.Topics {
		if countHits(rule.Keywords, nameTokens) > 0 || tokensContain(nameTokens, tokenize(rule.Label)) {
			return documentTopic{label: rule.Label, fromFilename: true}
		}
	}
	return documentTopic{label: c.bestTopic(tokenize(text), c.rules.DefaultTopic)}
}

func (c questionClassifier) bestTopic(tokens []string, fallback string) string {
	best, bestHits := fallback, 0
	for _, rule := range c.rules.Topics {
		if hits := countHits(rule.Keywords, tokens); hits > bestHits {
			best, bestHits = rule.Label, hits
		}
	}
	return best
}

func (c questionClassifier) firstMatch(rules []domain.KeywordRule, text, fallback string) string {
	tokens := tokenize(text)
	for _, rule := range rules {
		if countHits(rule.Keywords, tokens) > 0 {
			return rule.Label
		}
	}
	return fallback
}

func adjustConfidence(p rawPair) float64 {
	confidence := p.confidence
	if strings.HasSuffix(p.question, "?") {
		confidence += 0.05
	}
	if len([]rune(p.answer)) < 60 {
		confidence -= 0.1
	}
	return confidence
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func countHits(keywords []string, tokens []string) int {
	hits := 0
	for _, keyword := range keywords {
		parts := tokenize(keyword)
		if len(parts) == 0 {
			continue
		}
		if len(parts) == 1 {
			prefix := strings.HasSuffix(strings.TrimSpace(keyword), "*")
			for _, token := range tokens {
				if token == parts[0] || (prefix && strings.HasPrefix(token, parts[0])) {
					hits++
				}
			}
			continue
		}
		for i := 0; i+len(parts) <= len(tokens); i++ {
			if equalTokens(tokens[i:i+len(parts)], parts) {
				hits++
			}
		}
	}
	return hits
}

func tokensContain(tokens, seq []string) bool {
	if len(seq) == 0 {
		return false
	}
	for i := 0; i+len(seq) <= len(tokens); i++ {
		if equalTokens(tokens[i:i+len(seq)], seq) {
			return true
		}
	}
	return false
}

func equalTokens(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
