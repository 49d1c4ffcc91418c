package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaykarthicks/StudyAI/internal/models"
)

func chunksOf(texts ...string) []models.Chunk {
	out := make([]models.Chunk, len(texts))
	for i, t := range texts {
		out[i] = models.Chunk{Text: t, StartOffset: i}
	}
	return out
}

func TestRankFindsMatchingChunk(t *testing.T) {
	chunks := chunksOf(
		"Photosynthesis converts light energy into chemical energy in plants.",
		"The mitochondria is the powerhouse of the cell.",
		"Newton's laws describe the motion of classical objects.",
	)

	ranked := Rank("how do plants convert light energy", chunks, 1)
	require.Len(t, ranked, 1)
	assert.Contains(t, ranked[0].Chunk.Text, "Photosynthesis")
	assert.Greater(t, ranked[0].Score, 0.0)
}

func TestRankOrdersByScore(t *testing.T) {
	chunks := chunksOf(
		"cats sleep all day",
		"dogs bark at cats and chase cats around",
		"fish swim in water",
	)

	ranked := Rank("cats", chunks, 3)
	require.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	assert.Greater(t, ranked[0].Score, ranked[2].Score)
}

func TestRankEmptyChunks(t *testing.T) {
	assert.Nil(t, Rank("query", nil, 3))
	assert.Nil(t, Rank("query", []models.Chunk{}, 3))
}

func TestRankNonPositiveTopK(t *testing.T) {
	chunks := chunksOf("some text")
	assert.Nil(t, Rank("query", chunks, 0))
	assert.Nil(t, Rank("query", chunks, -1))
}

func TestRankClampsTopK(t *testing.T) {
	chunks := chunksOf("alpha text", "beta text")
	ranked := Rank("text", chunks, 10)
	assert.Len(t, ranked, 2)
}

func TestRankEmptyQueryFallsBackToFirstChunks(t *testing.T) {
	chunks := chunksOf("first chunk", "second chunk", "third chunk")

	ranked := Rank("", chunks, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "first chunk", ranked[0].Chunk.Text)
	assert.Equal(t, "second chunk", ranked[1].Chunk.Text)
	assert.Zero(t, ranked[0].Score)
}

func TestRankPunctuationOnlyFallsBack(t *testing.T) {
	// No token survives the pattern: vocabulary is empty.
	chunks := chunksOf("... !!!", "??? ---")

	ranked := Rank("?!", chunks, 1)
	require.Len(t, ranked, 1)
	assert.Equal(t, "... !!!", ranked[0].Chunk.Text)
	assert.Zero(t, ranked[0].Score)
}

func TestRankUnrelatedQueryFallsBack(t *testing.T) {
	// Query tokens exist but share nothing with the chunks; scores are all
	// zero and the stable sort preserves document order.
	chunks := chunksOf("alpha bravo", "charlie delta")

	ranked := Rank("zulu yankee", chunks, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "alpha bravo", ranked[0].Chunk.Text)
	assert.Equal(t, "charlie delta", ranked[1].Chunk.Text)
}

func TestRankStableOnTies(t *testing.T) {
	chunks := chunksOf("identical words here", "identical words here", "identical words here")

	ranked := Rank("identical words", chunks, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, 0, ranked[0].Chunk.StartOffset)
	assert.Equal(t, 1, ranked[1].Chunk.StartOffset)
	assert.Equal(t, 2, ranked[2].Chunk.StartOffset)
}

func TestRankIgnoresSingleCharacterTokens(t *testing.T) {
	chunks := chunksOf("a b c", "meaningful words live here")
	ranked := Rank("meaningful", chunks, 1)
	require.Len(t, ranked, 1)
	assert.Contains(t, ranked[0].Chunk.Text, "meaningful")
}

func TestContextBlock(t *testing.T) {
	ranked := []models.RankedChunk{
		{Chunk: models.Chunk{Text: "first"}},
		{Chunk: models.Chunk{Text: "second"}},
	}
	assert.Equal(t, "first\n\nsecond", ContextBlock(ranked))
	assert.Equal(t, "", ContextBlock(nil))
}

func TestTokenize(t *testing.T) {
	toks := tokenize("Hello, World! a x9 __init__ Café")
	assert.Equal(t, []string{"hello", "world", "x9", "__init__", "café"}, toks)
}
