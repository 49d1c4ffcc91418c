package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

const transcribePrompt = "Transcribe the text in this image exactly. Return only the text, with no commentary."

var _ core.VisionProvider = (*GeminiVision)(nil)

// GeminiVision transcribes rendered page images with a multimodal Gemini
// model. It handles scanned and handwritten pages the local OCR engines
// struggle with.
type GeminiVision struct {
	client *genai.Client
	model  string
}

func NewGeminiVision(ctx context.Context, apiKey string, model string) (*GeminiVision, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiVision{client: client, model: model}, nil
}

func (g *GeminiVision) Transcribe(ctx context.Context, pngImage []byte) (string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx,
		genai.Text(transcribePrompt),
		genai.ImageData("png", pngImage),
	)
	if err != nil {
		return "", fmt.Errorf("transcribe image: %w", err)
	}
	return flattenResponse(resp)
}

func (g *GeminiVision) Close() error {
	return g.client.Close()
}
