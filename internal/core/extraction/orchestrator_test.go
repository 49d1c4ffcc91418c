package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaykarthicks/StudyAI/internal/core"
	"github.com/ajaykarthicks/StudyAI/internal/models"
)

// --- fakes ---

type fakeSource struct {
	pages []string
	errAt map[int]error
}

func (s *fakeSource) PageCount() int { return len(s.pages) }

func (s *fakeSource) PageText(index int) (string, error) {
	if err, ok := s.errAt[index]; ok {
		return "", err
	}
	return s.pages[index], nil
}

func (s *fakeSource) Close() error { return nil }

type fakeOpener struct {
	src *fakeSource
	err error
}

func (o *fakeOpener) Open(_ []byte) (core.PageSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.src, nil
}

type fakeSession struct {
	renderErr error
	renders   int
}

func (s *fakeSession) RenderPage(index int) ([]byte, error) {
	if s.renderErr != nil {
		return nil, s.renderErr
	}
	s.renders++
	return []byte{0x89, byte(index)}, nil
}

func (s *fakeSession) Close() error { return nil }

type fakeRasterizer struct {
	session *fakeSession
	err     error
}

func (r *fakeRasterizer) Open(_ []byte) (core.RenderSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.session, nil
}

type fakeVision struct {
	text  string
	err   error
	calls int
}

func (v *fakeVision) Transcribe(_ context.Context, _ []byte) (string, error) {
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	return v.text, nil
}

type fakeRecognizer struct {
	strategy core.Strategy
	text     string
	err      error
	calls    int
}

func (r *fakeRecognizer) Strategy() core.Strategy { return r.strategy }

func (r *fakeRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.text, nil
}

// --- helpers ---

func runExtract(t *testing.T, o *Orchestrator) (string, []models.ProgressEvent, error) {
	t.Helper()
	ch := make(chan models.ProgressEvent, 64)
	emit := NewEmitter(context.Background(), ch)
	text, err := o.Extract(context.Background(), []byte("%PDF"), emit)
	return text, collect(ch), err
}

func messages(events []models.ProgressEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Message
	}
	return out
}

func longText(n int) string { return strings.Repeat("x", n) }

// --- tests ---

func TestExtractNativeOnlyDocument(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{pages: []string{longText(500), longText(200)}}}
	vision := &fakeVision{text: "should not be called"}
	ocr := &fakeRecognizer{strategy: core.StrategyOCRFast, text: "should not be called"}
	session := &fakeSession{}

	o := NewOrchestrator(opener, &fakeRasterizer{session: session}, vision, ocr, nil, nil, 50)
	text, events, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, longText(500)+"\n"+longText(200), text)
	assert.Zero(t, vision.calls)
	assert.Zero(t, ocr.calls)
	assert.Zero(t, session.renders)

	// Only the per-page progress lines, no escalation messages.
	msgs := messages(events)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Processing page 1 of 2...", msgs[0])
	assert.Equal(t, "Processing page 2 of 2...", msgs[1])
	assert.Equal(t, 10, events[0].Percent)
	assert.Equal(t, 50, events[1].Percent)
}

func TestExtractEscalatesSparsePageToOCR(t *testing.T) {
	// Page 1 has a rich text layer; page 2 is nearly empty, vision is not
	// configured, so fast OCR supplies the text.
	opener := &fakeOpener{src: &fakeSource{pages: []string{longText(500), longText(10)}}}
	ocr := &fakeRecognizer{strategy: core.StrategyOCRFast, text: longText(80)}

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, nil, ocr, nil, nil, 50)
	text, events, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, longText(500)+"\n"+longText(80), text)
	assert.Equal(t, 1, ocr.calls)
	assert.Contains(t, messages(events), "Page 2 looks scanned or handwritten. Using Vision AI (takes longer)...")
}

func TestExtractVisionWinsWhenLonger(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{pages: []string{longText(10)}}}
	vision := &fakeVision{text: longText(300)}
	ocr := &fakeRecognizer{strategy: core.StrategyOCRFast, text: longText(999)}

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, vision, ocr, nil, nil, 50)
	text, events, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, longText(300), text)
	assert.Equal(t, 1, vision.calls)
	assert.Zero(t, ocr.calls, "accepted vision result skips OCR entirely")
	assert.Contains(t, messages(events), "Page 1: extracted text with Vision AI")
}

func TestExtractVisionShorterFallsThroughToOCR(t *testing.T) {
	// Vision returns less text than the native layer already produced, so it
	// stays a candidate but the cascade continues to OCR.
	opener := &fakeOpener{src: &fakeSource{pages: []string{longText(30)}}}
	vision := &fakeVision{text: longText(5)}
	ocr := &fakeRecognizer{strategy: core.StrategyOCRFast, text: longText(120)}

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, vision, ocr, nil, nil, 50)
	text, events, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, longText(120), text)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 1, ocr.calls)
	assert.NotContains(t, messages(events), "Page 1: extracted text with Vision AI")
}

func TestExtractHeavyOCRIsLastResort(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{pages: []string{""}}}
	fast := &fakeRecognizer{strategy: core.StrategyOCRFast, text: longText(10)}
	heavy := &fakeRecognizer{strategy: core.StrategyOCRAccurate, text: longText(40)}

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, nil, fast, heavy, nil, 50)
	text, events, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, longText(40), text)
	assert.Equal(t, 1, fast.calls)
	assert.Equal(t, 1, heavy.calls)
	assert.Contains(t, messages(events), "Page 1: running deep OCR pass...")
}

func TestExtractStrategyErrorsAbstain(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{pages: []string{longText(10)}}}
	vision := &fakeVision{err: errors.New("quota exhausted")}
	fast := &fakeRecognizer{strategy: core.StrategyOCRFast, err: errors.New("engine crashed")}
	heavy := &fakeRecognizer{strategy: core.StrategyOCRAccurate, text: longText(60)}

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, vision, fast, heavy, nil, 50)
	text, _, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, longText(60), text)
}

func TestExtractAllStrategiesFailKeepsNativeText(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{pages: []string{"tiny"}}}
	vision := &fakeVision{err: errors.New("down")}
	fast := &fakeRecognizer{strategy: core.StrategyOCRFast, err: errors.New("down")}

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, vision, fast, nil, nil, 50)
	text, _, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, "tiny", text)
}

func TestExtractRasterizerFailureKeepsTextLayer(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{pages: []string{"sparse"}}}
	vision := &fakeVision{text: longText(500)}
	ocr := &fakeRecognizer{strategy: core.StrategyOCRFast, text: longText(500)}

	o := NewOrchestrator(opener, &fakeRasterizer{err: errors.New("corrupt stream")}, vision, ocr, nil, nil, 50)
	text, _, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, "sparse", text)
	assert.Zero(t, vision.calls)
	assert.Zero(t, ocr.calls)
}

func TestExtractRenderFailureKeepsTextLayer(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{pages: []string{"sparse"}}}
	session := &fakeSession{renderErr: errors.New("bad page")}
	ocr := &fakeRecognizer{strategy: core.StrategyOCRFast, text: longText(500)}

	o := NewOrchestrator(opener, &fakeRasterizer{session: session}, nil, ocr, nil, nil, 50)
	text, _, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, "sparse", text)
	assert.Zero(t, ocr.calls)
}

func TestExtractOpenFailureIsFatal(t *testing.T) {
	opener := &fakeOpener{err: errors.New("not a pdf")}
	o := NewOrchestrator(opener, nil, nil, nil, nil, nil, 50)

	_, _, err := runExtract(t, o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pdf")
}

func TestExtractEmptyDocument(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{}}
	o := NewOrchestrator(opener, nil, nil, nil, nil, nil, 50)

	text, events, err := runExtract(t, o)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, events)
}

func TestExtractPercentsNeverDecrease(t *testing.T) {
	pages := make([]string, 7)
	for i := range pages {
		pages[i] = longText(100)
	}
	opener := &fakeOpener{src: &fakeSource{pages: pages}}
	o := NewOrchestrator(opener, nil, nil, nil, nil, nil, 50)

	_, events, err := runExtract(t, o)
	require.NoError(t, err)
	last := 0
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Percent, last)
		last = ev.Percent
	}
}

func TestExtractQuotaPauseEmitsWaitMessage(t *testing.T) {
	// Window of 1: the second vision call must wait at the boundary.
	opener := &fakeOpener{src: &fakeSource{pages: []string{longText(5), longText(5)}}}
	vision := &fakeVision{text: longText(200)}
	limiter := NewQuotaLimiter(1, 10*time.Millisecond)

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, vision, nil, nil, limiter, 50)
	_, events, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, 2, vision.calls)

	found := false
	for _, msg := range messages(events) {
		if strings.HasPrefix(msg, "Rate limit reached. Waiting") {
			found = true
		}
	}
	assert.True(t, found, "expected a rate-limit wait message, got: %v", messages(events))
}

func TestExtractNativeErrorTreatedAsEmptyPage(t *testing.T) {
	opener := &fakeOpener{src: &fakeSource{
		pages: []string{longText(100), longText(100)},
		errAt: map[int]error{0: errors.New("damaged text layer")},
	}}
	ocr := &fakeRecognizer{strategy: core.StrategyOCRFast, text: longText(90)}

	o := NewOrchestrator(opener, &fakeRasterizer{session: &fakeSession{}}, nil, ocr, nil, nil, 50)
	text, _, err := runExtract(t, o)

	require.NoError(t, err)
	assert.Equal(t, longText(90)+"\n"+longText(100), text)
}

func TestLongestPrefersEarlierOnTies(t *testing.T) {
	c := longest([]core.Candidate{
		{Text: "aaaa", Strategy: core.StrategyNative},
		{Text: "bbbb", Strategy: core.StrategyVision},
	})
	assert.Equal(t, core.StrategyNative, c.Strategy)

	c = longest([]core.Candidate{
		{Text: "aaaa", Strategy: core.StrategyNative},
		{Text: "bbbbb", Strategy: core.StrategyVision},
	})
	assert.Equal(t, core.StrategyVision, c.Strategy)
}

func TestTrimmedLenCountsRunes(t *testing.T) {
	assert.Equal(t, 0, trimmedLen("   \n\t "))
	assert.Equal(t, 5, trimmedLen(" héllo "), "runes, not bytes")
	assert.Equal(t, 2, trimmedLen("日本"))
}
