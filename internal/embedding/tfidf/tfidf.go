package tfidf

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"sparsevec/internal/vector"
)

// Embedder is a TF-IDF vectorizer whose coordinates are the terms themselves.
// It learns document frequencies from a corpus in Prepare.
type Embedder struct {
	idf          map[string]float32
	docs         int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{
		idf:          make(map[string]float32),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare computes smoothed IDF values, ln((1+N)/(1+df)) + 1, over corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	n := float64(len(corpus))
	e.idf = make(map[string]float32, len(df))
	for term, count := range df {
		e.idf[term] = float32(math.Log((1+n)/(1+float64(count))) + 1.0)
	}
	e.docs = len(corpus)
	e.prepared = true
	return nil
}

// VocabularySize is the number of distinct terms seen by Prepare.
func (e *Embedder) VocabularySize() int { return len(e.idf) }

// Embed returns the L2-normalized TF-IDF vector of text. Terms outside the
// prepared vocabulary are ignored, so the result may be empty.
func (e *Embedder) Embed(text string) (*vector.SparseVector, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	tf := make(map[string]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if _, ok := e.idf[tok]; ok {
			tf[tok]++
			total++
		}
	}
	vec := vector.New()
	if total == 0 {
		return vec, nil
	}
	for term, count := range tf {
		vec.Set(term, float32(count)/float32(total)*e.idf[term])
	}
	if norm := vec.Length(false); norm > 0 {
		vec.DivideSelf(norm)
	}
	return vec, nil
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
