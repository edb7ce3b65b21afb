package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPermissiveAnswer = 10
	maxPermissiveAnswer = 800
	minSynthesisLength  = 40
	maxSynthesisLength  = 400
	minSynthesisWords   = 6
	maxSynthesized      = 25
	synthesisPrefix     = "Explain: "
)

var (
	inlineQuestion  = regexp.MustCompile(`[A-Z0-9(][^.?!]{8,300}\?`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!]`)
	blankLines      = regexp.MustCompile(`\n\s*\n`)
)

// segmentPermissive looks for question sentences anywhere in the text, across
// line breaks, and takes whatever follows up to the next question as the answer.
func segmentPermissive(text string) []rawPair {
	flat := strings.Join(strings.Fields(text), " ")
	locs := inlineQuestion.FindAllStringIndex(flat, -1)
	pairs := make([]rawPair, 0, len(locs))
	for i, loc := range locs {
		end := len(flat)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		question := flat[loc[0]:loc[1]]
		if q, ok := matchQuestion(question); ok {
			question = q
		}
		answer := truncateAtSentence(strings.TrimSpace(flat[loc[1]:end]), maxPermissiveAnswer)
		if utf8.RuneCountInString(answer) < minPermissiveAnswer || letterRatio(answer) <= minProseLetterRatio {
			continue
		}
		question = cleanSegment(question)
		if utf8.RuneCountInString(question) < minQuestionLength {
			continue
		}
		pairs = append(pairs, rawPair{question: question, answer: cleanSegment(answer), confidence: confidencePermissive})
	}
	return pairs
}

// synthesizeQuestions turns informative sentences, or failing that whole
// paragraphs, into "Explain:" prompts.
func synthesizeQuestions(text string) []rawPair {
	var pairs []rawPair
	flat := strings.Join(strings.Fields(text), " ")
	for _, sentence := range sentencePattern.FindAllString(flat, -1) {
		sentence = strings.TrimSpace(sentence)
		if !informative(sentence) {
			continue
		}
		pairs = append(pairs, rawPair{
			question:   synthesisPrefix + strings.TrimRight(sentence, ".!"),
			answer:     sentence,
			confidence: confidenceSynthesized,
		})
		if len(pairs) == maxSynthesized {
			return pairs
		}
	}
	if len(pairs) > 0 {
		return pairs
	}

	for _, paragraph := range blankLines.Split(text, -1) {
		paragraph = strings.Join(strings.Fields(paragraph), " ")
		if utf8.RuneCountInString(paragraph) < minSynthesisLength || len(strings.Fields(paragraph)) < minSynthesisWords {
			continue
		}
		if letterRatio(paragraph) <= minProseLetterRatio {
			continue
		}
		pairs = append(pairs, rawPair{
			question:   synthesisPrefix + truncateAtWord(paragraph, 160),
			answer:     truncateAtSentence(paragraph, maxPermissiveAnswer),
			confidence: confidenceSynthesized,
		})
		if len(pairs) == maxSynthesized {
			break
		}
	}
	return pairs
}

func informative(sentence string) bool {
	n := utf8.RuneCountInString(sentence)
	if n < minSynthesisLength || n > maxSynthesisLength {
		return false
	}
	if len(strings.Fields(sentence)) < minSynthesisWords {
		return false
	}
	return letterRatio(sentence) > 0.6
}

func truncateAtSentence(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndexAny(cut, ".!?"); idx > len(cut)/2 {
		return cut[:idx+1]
	}
	return truncateAtWord(s, limit)
}

func truncateAtWord(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}
