package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ajaykarthicks/StudyAI/internal/core"
	"github.com/ajaykarthicks/StudyAI/internal/core/extraction"
	"github.com/ajaykarthicks/StudyAI/internal/models"
)

// Extractor runs the full recognition cascade over a document.
type Extractor interface {
	Extract(ctx context.Context, data []byte, emit *extraction.Emitter) (string, error)
}

// IngestService turns uploaded document bytes into extracted text, reporting
// progress as an ordered event stream. Identical uploads are served from the
// text cache without re-running extraction.
type IngestService struct {
	cache     core.CacheStore
	extractor Extractor
}

func NewIngestService(cache core.CacheStore, extractor Extractor) *IngestService {
	return &IngestService{cache: cache, extractor: extractor}
}

// Ingest starts an ingestion run and returns its event stream. The channel is
// closed after the terminal event; cancelling ctx abandons the run.
func (s *IngestService) Ingest(ctx context.Context, data []byte) <-chan models.ProgressEvent {
	out := make(chan models.ProgressEvent, 16)
	go s.run(ctx, data, out)
	return out
}

func (s *IngestService) run(ctx context.Context, data []byte, out chan<- models.ProgressEvent) {
	defer close(out)
	emit := extraction.NewEmitter(ctx, out)

	id := core.ContentID(data)

	if text, ok := s.cache.Get(ctx, id); ok {
		log.Printf("[Cache] hit for %s", id[:12])
		emit.Progress(10, "Loaded text from cache.")
		emit.Complete(text)
		return
	}

	if !emit.Progress(0, "Processing the type of PDF...") {
		return
	}

	text, err := s.extractor.Extract(ctx, data, emit)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		emit.Error(fmt.Sprintf("Failed to read PDF: %v", err))
		return
	}

	emit.Progress(90, "Caching extracted text...")
	if err := s.cache.Put(ctx, id, text); err != nil {
		// Extraction succeeded; a cache write failure only costs the next
		// upload a re-run.
		log.Printf("[Cache] write failed for %s: %v", id[:12], err)
	}

	emit.Complete(text)
}
