package ocr

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

var _ core.Recognizer = (*TesseractEngine)(nil)

// TesseractEngine wraps a gosseract client as a local, no-network recognition
// strategy. A gosseract client is not safe for concurrent use, so every call
// is serialized through the engine's mutex; engines are constructed once at
// startup and shared across ingestion runs.
type TesseractEngine struct {
	mu         sync.Mutex
	client     *gosseract.Client
	strategy   core.Strategy
	preprocess bool
}

// NewFastEngine builds the lightweight engine: raw page image, automatic page
// segmentation. It is tried before the accurate engine because it is cheap.
func NewFastEngine(languages string) (*TesseractEngine, error) {
	client, err := newClient(languages)
	if err != nil {
		return nil, err
	}
	return &TesseractEngine{client: client, strategy: core.StrategyOCRFast}, nil
}

// NewAccurateEngine builds the last-resort engine: the page image is
// preprocessed (grayscale, upscale, binarization) before recognition, which
// helps with scans and handwriting at the cost of extra work per page.
func NewAccurateEngine(languages string) (*TesseractEngine, error) {
	client, err := newClient(languages)
	if err != nil {
		return nil, err
	}
	return &TesseractEngine{client: client, strategy: core.StrategyOCRAccurate, preprocess: true}, nil
}

func newClient(languages string) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if languages == "" {
		languages = "eng"
	}
	if err := client.SetLanguage(languages); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract language %q: %w", languages, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract page seg mode: %w", err)
	}
	return client, nil
}

func (e *TesseractEngine) Strategy() core.Strategy { return e.strategy }

func (e *TesseractEngine) Recognize(ctx context.Context, pngImage []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img := pngImage
	if e.preprocess {
		processed, err := PreprocessPNG(pngImage)
		if err != nil {
			log.Printf("[OCR] preprocessing failed, using raw image: %v", err)
		} else {
			img = processed
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("tesseract set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognize: %w", err)
	}
	return text, nil
}

func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
