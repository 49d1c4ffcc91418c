package core

import "context"

// LLMProvider generates a chat answer from a system prompt and a user prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// VisionProvider transcribes the text visible in a rendered page image.
// It is an optional capability: when no credential is configured the
// orchestrator is built with a nil provider and never escalates to vision.
type VisionProvider interface {
	Transcribe(ctx context.Context, pngImage []byte) (string, error)
}
