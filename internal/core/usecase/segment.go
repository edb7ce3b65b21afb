package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/readability"
)

const (
	minQuestionLength   = 11
	maxQuestionLength   = 400
	minAnswerLength     = 30
	maxAnswerLength     = 1500
	maxProseLineLength  = 600
	minProseLetterRatio = 0.5

	confidenceStructured  = 0.8
	confidencePermissive  = 0.6
	confidenceSynthesized = 0.4
)

var (
	questionMarker = regexp.MustCompile(`^(?:Q(?:uestion)?\s*\d*\s*[:.)]|\(?\d{1,3}\s*[.)]|[A-Z]\))\s*`)
	leadWord       = regexp.MustCompile(`(?i)^(?:what|why|how|when|where|which|who|whom|whose|explain|define|describe|discuss|compare|contrast|list|derive|prove|calculate|evaluate|analy[sz]e|outline|justify|distinguish|differentiate)\b`)
)

type segmentState int

const (
	seekingQuestion segmentState = iota
	accumulatingAnswer
)

// SegmentQuestionsUseCase splits cleaned text into question/answer pairs.
type SegmentQuestionsUseCase struct {
	classifier questionClassifier
}

func NewSegmentQuestionsUseCase(rules domain.ClassificationRules) *SegmentQuestionsUseCase {
	return &SegmentQuestionsUseCase{classifier: newQuestionClassifier(rules)}
}

// Segment never fails: when no structure is found it degrades to a permissive
// matcher, then to questions synthesised from sentences, and finally to an
// empty list for text without words.
func (uc *SegmentQuestionsUseCase) Segment(text, filename string) []domain.QuestionCandidate {
	text = readability.Normalize(text)
	if letterCount(text) == 0 {
		return []domain.QuestionCandidate{}
	}

	pairs := segmentStructured(text)
	if len(pairs) == 0 {
		pairs = segmentPermissive(text)
	}
	if len(pairs) == 0 {
		pairs = synthesizeQuestions(text)
	}
	pairs = dedupePairs(pairs)

	docTopic := uc.classifier.topic(filename, text)
	out := make([]domain.QuestionCandidate, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, uc.classifier.classify(p, docTopic))
	}
	return out
}

type rawPair struct {
	question   string
	answer     string
	confidence float64
}

// segmentStructured is a two-state machine: seeking a question line, then
// accumulating prose answer lines until the next question line.
func segmentStructured(text string) []rawPair {
	var (
		state    = seekingQuestion
		question string
		answer   strings.Builder
		pairs    []rawPair
	)

	flush := func() {
		if p, ok := buildPair(question, answer.String(), confidenceStructured); ok {
			pairs = append(pairs, p)
		}
		question = ""
		answer.Reset()
		state = seekingQuestion
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if q, ok := matchQuestion(line); ok {
			if state == accumulatingAnswer && answer.Len() == 0 && !strings.HasSuffix(question, "?") &&
				!questionMarker.MatchString(line) && !leadWord.MatchString(line) && strings.HasSuffix(line, "?") {
				// Wrapped question text.
				question = question + " " + line
				continue
			}
			if state == accumulatingAnswer {
				flush()
			}
			question = q
			state = accumulatingAnswer
			continue
		}

		if state != accumulatingAnswer || !isProseLine(line) {
			continue
		}
		if utf8.RuneCountInString(answer.String()) >= maxAnswerLength {
			continue
		}
		if answer.Len() > 0 {
			answer.WriteByte(' ')
		}
		answer.WriteString(line)
	}
	if state == accumulatingAnswer {
		flush()
	}
	return pairs
}

// matchQuestion reports whether line opens a question and returns the question
// text with any numbering marker removed.
func matchQuestion(line string) (string, bool) {
	if loc := questionMarker.FindStringIndex(line); loc != nil {
		rest := strings.TrimSpace(line[loc[1]:])
		marker := line[:loc[1]]
		decimal := rest != "" && unicode.IsDigit([]rune(rest)[0]) && strings.ContainsAny(marker, "0123456789.")
		if rest != "" && !decimal {
			return rest, true
		}
	}
	if utf8.RuneCountInString(line) > maxQuestionLength {
		return "", false
	}
	if leadWord.MatchString(line) || strings.Contains(line, "?") {
		return line, true
	}
	return "", false
}

func isProseLine(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < 2 || n > maxProseLineLength {
		return false
	}
	return letterRatio(line) > minProseLetterRatio
}

func buildPair(question, answer string, confidence float64) (rawPair, bool) {
	question = cleanSegment(question)
	answer = cleanSegment(answer)
	if utf8.RuneCountInString(question) < minQuestionLength {
		return rawPair{}, false
	}
	if utf8.RuneCountInString(answer) < minAnswerLength {
		return rawPair{}, false
	}
	return rawPair{question: question, answer: answer, confidence: confidence}, true
}

var doubleSpaces = regexp.MustCompile(`[ \t]{2,}`)

func cleanSegment(s string) string {
	return strings.TrimSpace(doubleSpaces.ReplaceAllString(s, " "))
}

func dedupePairs(pairs []rawPair) []rawPair {
	seen := make(map[string]struct{}, len(pairs))
	out := make([]rawPair, 0, len(pairs))
	for _, p := range pairs {
		key := questionKey(p.question)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// questionKey normalises a question for duplicate detection.
func questionKey(q string) string {
	q = strings.ToLower(strings.Join(strings.Fields(q), " "))
	return strings.TrimRight(q, " ?.!:")
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func letterRatio(s string) float64 {
	total := utf8.RuneCountInString(s)
	if total == 0 {
		return 0
	}
	return float64(letterCount(s)) / float64(total)
}
