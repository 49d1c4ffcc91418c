package extraction

import (
	"context"

	"github.com/ajaykarthicks/StudyAI/internal/models"
)

// Emitter pushes ProgressEvents into a bounded channel on behalf of a single
// ingestion run. It enforces the stream invariants: percent never decreases,
// nothing is emitted after a terminal event, and a consumer that walks away
// (context cancelled) simply stops the producer instead of blocking it.
type Emitter struct {
	ctx         context.Context
	out         chan<- models.ProgressEvent
	lastPercent int
	done        bool
}

func NewEmitter(ctx context.Context, out chan<- models.ProgressEvent) *Emitter {
	return &Emitter{ctx: ctx, out: out}
}

// Progress emits a non-terminal event. The return value reports whether the
// consumer is still listening; callers should stop work when it is false.
func (e *Emitter) Progress(percent int, message string) bool {
	return e.send(models.ProgressEvent{Kind: models.EventProgress, Percent: percent, Message: message})
}

// Complete emits the terminal success event carrying the full document text.
func (e *Emitter) Complete(text string) bool {
	return e.send(models.ProgressEvent{Kind: models.EventComplete, Percent: 100, Text: text})
}

// Error emits the terminal failure event.
func (e *Emitter) Error(message string) bool {
	return e.send(models.ProgressEvent{Kind: models.EventError, Percent: e.lastPercent, Message: message})
}

func (e *Emitter) send(ev models.ProgressEvent) bool {
	if e.done {
		return false
	}
	if ev.Percent < e.lastPercent {
		ev.Percent = e.lastPercent
	}

	select {
	case e.out <- ev:
		e.lastPercent = ev.Percent
		if ev.Terminal() {
			e.done = true
		}
		return true
	case <-e.ctx.Done():
		e.done = true
		return false
	}
}
