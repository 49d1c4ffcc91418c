package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"github.com/ajaykarthicks/StudyAI/internal/core"
	"github.com/ajaykarthicks/StudyAI/internal/core/rag"
)

// ErrDocumentNotFound is returned when no extracted text exists for the
// requested document id.
var ErrDocumentNotFound = errors.New("document not found")

const chatSystemPrompt = "You are an intelligent assistant that answers questions based only on the given document content. If the answer is not in the document, say so."

// ChatService answers questions about a previously ingested document by
// retrieving the most relevant chunks of its text and prompting the chat
// model with them as context.
type ChatService struct {
	cache   core.CacheStore
	llm     core.LLMProvider
	limiter *rate.Limiter

	chunkSize    int
	chunkOverlap int
	topK         int
}

func NewChatService(cache core.CacheStore, llm core.LLMProvider, rpm int, chunkSize, chunkOverlap, topK int) *ChatService {
	if rpm <= 0 {
		rpm = 30
	}
	return &ChatService{
		cache:        cache,
		llm:          llm,
		limiter:      rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		topK:         topK,
	}
}

// Answer resolves documentID to its extracted text, ranks its chunks against
// the query, and generates an answer grounded in the winning chunks.
func (s *ChatService) Answer(ctx context.Context, documentID string, query string) (string, error) {
	text, ok := s.cache.Get(ctx, documentID)
	if !ok {
		return "", ErrDocumentNotFound
	}
	return s.answer(ctx, documentID, text, query)
}

// AnswerText answers over caller-supplied text, bypassing the cache. It
// serves clients that hold the extracted text from an earlier upload and
// do not want a server round-trip per document.
func (s *ChatService) AnswerText(ctx context.Context, text string, query string) (string, error) {
	return s.answer(ctx, "inline", text, query)
}

func (s *ChatService) answer(ctx context.Context, label, text, query string) (string, error) {
	chunks, err := rag.Chunk(text, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return "", fmt.Errorf("chunk document: %w", err)
	}
	ranked := rag.Rank(query, chunks, s.topK)
	log.Printf("[Chat] document %s: %d chunks, %d retrieved", shortID(label), len(chunks), len(ranked))

	prompt := fmt.Sprintf(
		"Context information is below.\n---------------------\n%s\n---------------------\nGiven the context information and not prior knowledge, answer the query.\nQuery: %s",
		rag.ContextBlock(ranked), query,
	)

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return s.llm.Generate(ctx, chatSystemPrompt, prompt)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
