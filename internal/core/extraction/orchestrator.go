package extraction

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

// Orchestrator drives the per-page recognition cascade: native text layer
// first, then cloud vision, then local OCR, escalating only when the current
// candidate is low-confidence. Strategy failures abstain; the only fatal
// condition is a document whose page structure cannot be opened at all.
type Orchestrator struct {
	opener    core.DocumentOpener
	raster    core.Rasterizer
	vision    core.VisionProvider // nil when no credential is configured
	ocrFast   core.Recognizer     // nil when the engine is unavailable
	ocrHeavy  core.Recognizer
	limiter   *QuotaLimiter
	threshold int
}

func NewOrchestrator(
	opener core.DocumentOpener,
	raster core.Rasterizer,
	vision core.VisionProvider,
	ocrFast core.Recognizer,
	ocrHeavy core.Recognizer,
	limiter *QuotaLimiter,
	threshold int,
) *Orchestrator {
	if threshold <= 0 {
		threshold = 50
	}
	return &Orchestrator{
		opener:    opener,
		raster:    raster,
		vision:    vision,
		ocrFast:   ocrFast,
		ocrHeavy:  ocrHeavy,
		limiter:   limiter,
		threshold: threshold,
	}
}

// Extract runs the cascade over every page in order and returns the
// newline-joined document text. Pages that yield nothing still contribute an
// empty line so page count and line structure stay stable for chunking.
// Progress events for pages are spread linearly over the 10-90% range.
func (o *Orchestrator) Extract(ctx context.Context, data []byte, emit *Emitter) (string, error) {
	src, err := o.opener.Open(data)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	defer src.Close()

	total := src.PageCount()
	log.Printf("[OCR] starting extraction: %d bytes, %d pages", len(data), total)
	if total == 0 {
		return "", nil
	}

	// One render handle shared by vision and OCR for the whole run. Failure
	// to open is non-fatal: pages simply cannot escalate past the text layer.
	var session core.RenderSession
	if o.raster != nil {
		session, err = o.raster.Open(data)
		if err != nil {
			log.Printf("[OCR] rasterizer unavailable for this document: %v", err)
			session = nil
		} else {
			defer session.Close()
		}
	}

	visionCalls := 0
	pages := make([]string, 0, total)
	for i := 0; i < total; i++ {
		percent := 10 + int(float64(i)/float64(total)*80)
		if !emit.Progress(percent, fmt.Sprintf("Processing page %d of %d...", i+1, total)) {
			return "", ctx.Err()
		}

		final := o.extractPage(ctx, src, session, i, percent, emit, &visionCalls)
		log.Printf("[OCR] page %d/%d via %s (%d chars)", i+1, total, final.Strategy, trimmedLen(final.Text))
		pages = append(pages, final.Text)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return strings.Join(pages, "\n"), nil
}

// extractPage runs the cascade for a single page and reduces the accumulated
// candidates to a winner. Precedence is encoded by the order candidates are
// gathered plus a longest-trimmed-text reducer, not by mutable early-exit
// bookkeeping: the winner is never shorter than the native candidate.
func (o *Orchestrator) extractPage(
	ctx context.Context,
	src core.PageSource,
	session core.RenderSession,
	index int,
	percent int,
	emit *Emitter,
	visionCalls *int,
) core.Candidate {
	var candidates []core.Candidate

	native, err := src.PageText(index)
	if err != nil {
		log.Printf("[OCR] native text layer failed for page %d: %v", index+1, err)
		native = ""
	}
	candidates = append(candidates, core.Candidate{Text: native, Strategy: core.StrategyNative})
	if !o.lowConfidence(native) {
		return longest(candidates)
	}

	emit.Progress(percent, fmt.Sprintf("Page %d looks scanned or handwritten. Using Vision AI (takes longer)...", index+1))

	img := renderPage(session, index)
	if img == nil {
		// Nothing to feed vision or OCR; keep whatever text exists.
		return longest(candidates)
	}

	if o.vision != nil {
		bestLen := trimmedLen(longest(candidates).Text)
		if accepted, cand := o.tryVision(ctx, img, bestLen, index, percent, emit, visionCalls); cand != nil {
			candidates = append(candidates, *cand)
			if accepted {
				emit.Progress(percent, fmt.Sprintf("Page %d: extracted text with Vision AI", index+1))
				return longest(candidates)
			}
		}
	}

	if o.ocrFast != nil {
		if text, err := o.ocrFast.Recognize(ctx, img); err != nil {
			log.Printf("[OCR] %s failed for page %d: %v", o.ocrFast.Strategy(), index+1, err)
		} else {
			candidates = append(candidates, core.Candidate{Text: text, Strategy: o.ocrFast.Strategy()})
			if !o.lowConfidence(text) {
				return longest(candidates)
			}
		}
	}

	if o.ocrHeavy != nil {
		emit.Progress(percent, fmt.Sprintf("Page %d: running deep OCR pass...", index+1))
		if text, err := o.ocrHeavy.Recognize(ctx, img); err != nil {
			log.Printf("[OCR] %s failed for page %d: %v", o.ocrHeavy.Strategy(), index+1, err)
		} else {
			candidates = append(candidates, core.Candidate{Text: text, Strategy: o.ocrHeavy.Strategy()})
		}
	}

	return longest(candidates)
}

// tryVision issues one rate-limited transcription call. The candidate is
// accepted outright when it is strictly longer than the best text gathered
// so far: cloud transcription, when it works, is trusted over local OCR.
func (o *Orchestrator) tryVision(
	ctx context.Context,
	img []byte,
	bestLen int,
	index int,
	percent int,
	emit *Emitter,
	visionCalls *int,
) (accepted bool, cand *core.Candidate) {
	if pause := o.limiter.Pause(*visionCalls); pause > 0 {
		log.Printf("[OCR] vision quota boundary at %d calls, pausing %s", *visionCalls, pause)
		emit.Progress(percent, fmt.Sprintf("Rate limit reached. Waiting %s before continuing...", pause))
		if !sleepContext(ctx, pause) {
			return false, nil
		}
	}

	text, err := o.vision.Transcribe(ctx, img)
	if err != nil {
		log.Printf("[OCR] vision transcription failed for page %d: %v", index+1, err)
		return false, nil
	}
	*visionCalls++

	c := core.Candidate{Text: text, Strategy: core.StrategyVision}
	return trimmedLen(text) > bestLen, &c
}

func (o *Orchestrator) lowConfidence(text string) bool {
	return trimmedLen(text) < o.threshold
}

func renderPage(session core.RenderSession, index int) []byte {
	if session == nil {
		return nil
	}
	img, err := session.RenderPage(index)
	if err != nil {
		log.Printf("[OCR] render failed for page %d: %v", index+1, err)
		return nil
	}
	return img
}

// longest picks the candidate with the most trimmed characters; earlier
// strategies win ties, so a later engine must strictly improve to displace
// an earlier result.
func longest(candidates []core.Candidate) core.Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if trimmedLen(c.Text) > trimmedLen(best.Text) {
			best = c
		}
	}
	return best
}

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
