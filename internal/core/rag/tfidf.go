package rag

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ajaykarthicks/StudyAI/internal/models"
)

// Tokens are lowercased runs of two or more word characters, mirroring the
// classic TF-IDF vectorizer default.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Rank scores every chunk against the query with TF-IDF weighted cosine
// similarity and returns the top k chunks by descending score, ties broken
// by original chunk order.
//
// The vector space is built over the chunks plus the query treated as one
// extra document. When the vocabulary degenerates to nothing (stop-words
// only, punctuation only), Rank falls back to the first k chunks verbatim
// rather than surfacing an error; retrieval is best-effort by design.
func Rank(query string, chunks []models.Chunk, topK int) []models.RankedChunk {
	if len(chunks) == 0 || topK <= 0 {
		return nil
	}
	if topK > len(chunks) {
		topK = len(chunks)
	}

	docs := make([][]string, 0, len(chunks)+1)
	for _, c := range chunks {
		docs = append(docs, tokenize(c.Text))
	}
	queryTokens := tokenize(query)
	docs = append(docs, queryTokens)

	vocab := buildVocabulary(docs)
	if len(vocab) == 0 || len(queryTokens) == 0 {
		return firstK(chunks, topK)
	}

	idf := inverseDocFrequency(docs, vocab)
	queryVec := vectorize(queryTokens, vocab, idf)
	if norm(queryVec) == 0 {
		return firstK(chunks, topK)
	}

	ranked := make([]models.RankedChunk, len(chunks))
	for i, c := range chunks {
		ranked[i] = models.RankedChunk{
			Chunk: c,
			Score: cosine(queryVec, vectorize(docs[i], vocab, idf)),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked[:topK]
}

// ContextBlock joins ranked chunk texts with blank lines, in ranked order,
// producing the bounded context handed to the chat model.
func ContextBlock(ranked []models.RankedChunk) string {
	parts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		parts = append(parts, r.Chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}

func firstK(chunks []models.Chunk, k int) []models.RankedChunk {
	out := make([]models.RankedChunk, 0, k)
	for _, c := range chunks[:k] {
		out = append(out, models.RankedChunk{Chunk: c})
	}
	return out
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func buildVocabulary(docs [][]string) map[string]int {
	vocab := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range doc {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
	}
	return vocab
}

// inverseDocFrequency computes smoothed IDF: ln((1+n)/(1+df)) + 1. Smoothing
// keeps terms that appear in every document from zeroing out entirely.
func inverseDocFrequency(docs [][]string, vocab map[string]int) []float64 {
	df := make([]int, len(vocab))
	for _, doc := range docs {
		seen := make(map[int]bool, len(doc))
		for _, tok := range doc {
			if idx, ok := vocab[tok]; ok && !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}
	return idf
}

func vectorize(tokens []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(vocab))
	for _, tok := range tokens {
		if idx, ok := vocab[tok]; ok {
			vec[idx]++
		}
	}
	for i := range vec {
		vec[i] *= idf[i]
	}
	return vec
}

func cosine(a, b []float64) float64 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	sim := dot / (na * nb)
	// Guard against float drift past 1.0.
	if sim > 1 {
		sim = 1
	}
	return sim
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
