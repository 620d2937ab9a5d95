package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"sparsevec/internal/domain"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// SentenceChunker groups consecutive sentences into passages. Adjacent
// passages share overlapSentences sentences.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
}

// NewSentenceChunker clamps its arguments: sentencesPerChunk defaults to 5
// and the overlap must stay below it.
func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
	}
}

// Sentences splits text into trimmed sentences. Text without terminal
// punctuation is returned as one sentence.
func Sentences(text string) []string {
	found := sentenceRe.FindAllString(text, -1)
	if len(found) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}
	out := make([]string, 0, len(found))
	for _, s := range found {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Chunk implements domain.Chunker.
func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Passage, error) {
	sentences := Sentences(document.Content)
	var passages []domain.Passage
	for start, idx := 0, 0; start < len(sentences); idx++ {
		end := min(start+c.sentencesPerChunk, len(sentences))
		passages = append(passages, domain.Passage{
			DocumentID: document.ID,
			PassageID:  document.ID + ":" + strconv.Itoa(idx),
			Text:       strings.Join(sentences[start:end], " "),
			Index:      idx,
		})
		if end == len(sentences) {
			break
		}
		start = end - c.overlapSentences
	}
	return passages, nil
}
