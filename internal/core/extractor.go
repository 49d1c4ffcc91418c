package core

import "context"

// Strategy names the recognition path that produced a page's text.
// Recorded for diagnostics only; correctness never depends on it.
type Strategy string

const (
	StrategyNative      Strategy = "native"
	StrategyVision      Strategy = "vision"
	StrategyOCRFast     Strategy = "ocr-fast"
	StrategyOCRAccurate Strategy = "ocr-accurate"
)

// Candidate is one strategy's text attempt for a single page. Candidates are
// transient: they live only for the duration of that page's cascade.
type Candidate struct {
	Text     string
	Strategy Strategy
}

// PageSource exposes a parsed document's page structure and its native text
// layer. Pages are addressed by zero-based index.
type PageSource interface {
	PageCount() int
	PageText(index int) (string, error)
	Close() error
}

// DocumentOpener parses document bytes into a PageSource. A failure here is
// the only fatal condition for an ingestion run: if the page container cannot
// be opened there is nothing to iterate.
type DocumentOpener interface {
	Open(data []byte) (PageSource, error)
}

// RenderSession rasterizes pages of a single open document to PNG bitmaps.
// Close must release the underlying document handle even when a run is
// abandoned mid-way.
type RenderSession interface {
	RenderPage(index int) ([]byte, error)
	Close() error
}

// Rasterizer opens document bytes for page rendering at a fixed zoom factor.
type Rasterizer interface {
	Open(data []byte) (RenderSession, error)
}

// Recognizer produces text from a rendered page image. An error means the
// engine abstained for this page; it is never fatal to the document.
type Recognizer interface {
	Strategy() Strategy
	Recognize(ctx context.Context, pngImage []byte) (string, error)
}
