package pdf

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

var _ core.DocumentOpener = (*Opener)(nil)

// Opener parses PDF bytes into a page source backed by the document's
// embedded text layer. Opening is the structural check for the whole run:
// a malformed container fails here and nowhere else.
type Opener struct{}

func NewOpener() *Opener { return &Opener{} }

func (Opener) Open(data []byte) (core.PageSource, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return &textLayerSource{reader: r}, nil
}

type textLayerSource struct {
	reader *pdf.Reader
}

func (s *textLayerSource) PageCount() int {
	return s.reader.NumPage()
}

// PageText extracts the native text layer of one page. Image-only pages
// commonly return an empty string or an extraction error; both are treated
// by the caller as "no usable text", not as failures.
func (s *textLayerSource) PageText(index int) (string, error) {
	p := s.reader.Page(index + 1) // ledongthuc/pdf pages are 1-based
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d text layer: %w", index+1, err)
	}
	return text, nil
}

func (s *textLayerSource) Close() error { return nil }
