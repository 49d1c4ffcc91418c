package pdf

import (
	"fmt"

	fitz "github.com/gen2brain/go-fitz"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

const baseDPI = 72

var _ core.Rasterizer = (*FitzRasterizer)(nil)

// FitzRasterizer renders PDF pages to PNG bitmaps through MuPDF at a fixed
// zoom factor. It is used only when the native text layer of a page is
// judged insufficient.
type FitzRasterizer struct {
	zoom float64
}

func NewFitzRasterizer(zoom float64) *FitzRasterizer {
	if zoom <= 0 {
		zoom = 2.0
	}
	return &FitzRasterizer{zoom: zoom}
}

func (r *FitzRasterizer) Open(data []byte) (core.RenderSession, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rendering: %w", err)
	}
	return &fitzSession{doc: doc, dpi: baseDPI * r.zoom}, nil
}

type fitzSession struct {
	doc *fitz.Document
	dpi float64
}

func (s *fitzSession) RenderPage(index int) ([]byte, error) {
	img, err := s.doc.ImagePNG(index, s.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index+1, err)
	}
	return img, nil
}

func (s *fitzSession) Close() error {
	return s.doc.Close()
}
