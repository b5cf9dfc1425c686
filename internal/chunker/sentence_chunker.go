package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"nyayabot/internal/domain"
)

// SentenceChunker splits document text into sentence-based chunks with
// overlap. Runs only at ingestion time; chunk boundaries never change for
// the lifetime of an index.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?\x{0964}]+[.!?\x{0964}])`),
	}
}

// Chunk splits one document (or one PDF page) into chunks. Chunk IDs carry
// document name, page and position; Index is assigned later by the ingest
// pipeline in corpus order. The sentence splitter also honors the
// Devanagari danda used in Hindi and Marathi texts.
func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := c.splitter.FindAllString(document.Content, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(document.Content)
		if trimmed == "" {
			return nil, nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	var chunks []domain.Chunk
	i := 0
	idx := 0
	for i < len(sentences) {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		text := strings.Join(sentences[i:end], " ")
		chunks = append(chunks, domain.Chunk{
			ID:       chunkID(document, idx),
			Text:     text,
			Document: document.Name,
			Page:     document.Page,
		})
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
		if i < 0 {
			i = 0
		}
		idx++
	}
	return chunks, nil
}

func chunkID(document domain.Document, idx int) string {
	if document.Page > 0 {
		return fmt.Sprintf("%s:p%d:%d", document.Name, document.Page, idx)
	}
	return fmt.Sprintf("%s:%d", document.Name, idx)
}
