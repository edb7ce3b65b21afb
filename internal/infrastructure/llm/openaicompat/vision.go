package openaicompat

import (
	"context"
	"encoding/base64"

	openai "github.com/sashabaranov/go-openai"
)

const visionOperation = "vision_recognize_page"

// VisionRecognizer reads page images with a multimodal chat model.
type VisionRecognizer struct {
	client *Client
}

func NewVisionRecognizer(client *Client) *VisionRecognizer {
	return &VisionRecognizer{client: client}
}

func (v *VisionRecognizer) RecognizePage(ctx context.Context, png []byte) (string, error) {
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return v.client.complete(ctx, visionOperation, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURI,
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		},
	})
}
