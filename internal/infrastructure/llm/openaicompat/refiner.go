package openaicompat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

const refineOperation = "llm_refine_questions"

// Refiner asks the language model for structured questions over one chunk of
// extracted text.
type Refiner struct {
	client *Client
}

func NewRefiner(client *Client) *Refiner {
	return &Refiner{client: client}
}

func (r *Refiner) Refine(ctx context.Context, text, filename string) ([]domain.QuestionCandidate, error) {
	if strings.TrimSpace(text) == "" {
		return []domain.QuestionCandidate{}, nil
	}

	reply, err := r.client.complete(ctx, refineOperation, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: refineSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: buildRefinePrompt(text, filename)},
	})
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(reply)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", refineOperation, err)
	}
	return questions, nil
}
