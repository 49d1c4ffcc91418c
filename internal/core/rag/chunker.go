package rag

import (
	"fmt"

	"github.com/ajaykarthicks/StudyAI/internal/models"
)

// Chunk splits text into overlapping fixed-size windows. Size, overlap and
// StartOffset are all measured in characters (runes), never bytes, so window
// edges cannot split a multibyte character. Windows start at offset 0 and
// advance by size-overlap; the last window is clipped at the end of the text.
// Boundaries are a pure function of the text length and the two parameters,
// so chunking is deterministic across runs.
//
// overlap >= size would never advance and is rejected as a caller contract
// violation.
func Chunk(text string, size, overlap int) ([]models.Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, size=%d)", overlap, size)
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := size - overlap
	chunks := make([]models.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{Text: string(runes[start:end]), StartOffset: start})
	}
	return chunks, nil
}
