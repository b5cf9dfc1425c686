package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyayabot/internal/domain"
)

// fakeTranslator maps between English and Hindi with a fixed dictionary so
// the round-trip through the pipeline is observable.
type fakeTranslator struct {
	detected     domain.Language
	detectErr    error
	toEnglish    map[string]string
	fromEnglish  map[string]string
	translateErr error
	outErr       error
	calls        int
}

func (f *fakeTranslator) Detect(context.Context, string) (domain.Language, error) {
	if f.detectErr != nil {
		return "", f.detectErr
	}
	return f.detected, nil
}

func (f *fakeTranslator) Translate(_ context.Context, text string, source, target domain.Language) (string, domain.TranslationStrategy, error) {
	f.calls++
	if source == target {
		return text, domain.StrategyDirect, nil
	}
	if target == domain.LangEnglish {
		if f.translateErr != nil {
			return "", "", f.translateErr
		}
		if out, ok := f.toEnglish[text]; ok {
			return out, domain.StrategyDirect, nil
		}
		return text, domain.StrategyDirect, nil
	}
	if f.outErr != nil {
		return "", "", f.outErr
	}
	if out, ok := f.fromEnglish[text]; ok {
		return out, domain.StrategyDirect, nil
	}
	return text, domain.StrategyDirect, nil
}

type fakeRetriever struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastTopK  int
}

func (f *fakeRetriever) Retrieve(_ context.Context, queryEN string, topK int) ([]domain.SearchResult, error) {
	f.lastQuery = queryEN
	f.lastTopK = topK
	return f.results, f.err
}

type fakeGenerator struct {
	answer       string
	summary      string
	err          error
	multilingual bool
}

func (f *fakeGenerator) Generate(context.Context, string, []domain.SearchResult) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) Summarize(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func (f *fakeGenerator) Multilingual() bool { return f.multilingual }

type fakeIndex struct{ count int }

func (f *fakeIndex) Count() int { return f.count }

func rightsChunk() domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{
			ID:       "constitution.txt:0",
			Text:     "Part III of the Constitution guarantees fundamental rights including equality and freedom.",
			Document: "constitution.txt",
			Index:    0,
		},
		Score: 0.92,
	}
}

func newTestService(t *testing.T, tr domain.Translator, re domain.Retriever, ge domain.Generator) *QAService {
	t.Helper()
	svc, err := New(tr, re, ge, nil, &fakeIndex{count: 10}, 5)
	require.NoError(t, err)
	return svc
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("Should answer an English question end to end", func(t *testing.T) {
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, &fakeTranslator{detected: domain.LangEnglish}, retr, &fakeGenerator{answer: "Fundamental rights include equality and freedom."})

		answer, err := svc.Answer(ctx, domain.Query{Text: "What are my fundamental rights?", Language: domain.LangEnglish, IncludeSources: true})
		require.NoError(t, err)
		assert.Equal(t, "Fundamental rights include equality and freedom.", answer.Text)
		assert.Equal(t, domain.LangEnglish, answer.Language)
		assert.Equal(t, "What are my fundamental rights?", answer.EnglishQuery)
		assert.Equal(t, domain.StrategyDirect, answer.Strategy)
		assert.Empty(t, answer.Degraded)
		require.Len(t, answer.Sources, 1)
		assert.Equal(t, "constitution.txt", answer.Sources[0].Chunk.Document)
		assert.Equal(t, "What are my fundamental rights?", retr.lastQuery)
		assert.Equal(t, 5, retr.lastTopK, "unset topK takes the configured default")
	})

	t.Run("Should answer in the language of the question", func(t *testing.T) {
		tr := &fakeTranslator{
			toEnglish:   map[string]string{"मेरे मौलिक अधिकार क्या हैं?": "What are my fundamental rights?"},
			fromEnglish: map[string]string{"Equality and freedom.": "समानता और स्वतंत्रता।"},
		}
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, tr, retr, &fakeGenerator{answer: "Equality and freedom."})

		answer, err := svc.Answer(ctx, domain.Query{Text: "मेरे मौलिक अधिकार क्या हैं?", Language: domain.LangHindi})
		require.NoError(t, err)
		assert.Equal(t, domain.LangHindi, answer.Language, "response language must match the query language")
		assert.Equal(t, "समानता और स्वतंत्रता।", answer.Text)
		assert.Equal(t, "What are my fundamental rights?", answer.EnglishQuery)
		assert.Equal(t, "मेरे मौलिक अधिकार क्या हैं?", answer.OriginalQuery)
		assert.Equal(t, "What are my fundamental rights?", retr.lastQuery, "retrieval must see the English text")
	})

	t.Run("Should auto-detect the query language", func(t *testing.T) {
		tr := &fakeTranslator{detected: domain.LangMarathi}
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, tr, retr, &fakeGenerator{answer: "answer"})

		answer, err := svc.Answer(ctx, domain.Query{Text: "माझे मूलभूत हक्क कोणते आहेत?"})
		require.NoError(t, err)
		assert.Equal(t, domain.LangMarathi, answer.Language)
	})

	t.Run("Should treat undetectable text as English", func(t *testing.T) {
		tr := &fakeTranslator{detectErr: &domain.LanguageDetectionError{Reason: "ambiguous"}}
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, tr, retr, &fakeGenerator{answer: "answer"})

		answer, err := svc.Answer(ctx, domain.Query{Text: "???"})
		require.NoError(t, err)
		assert.Equal(t, domain.LangEnglish, answer.Language)
	})

	t.Run("Should continue untranslated when translation fails and the generator is multilingual", func(t *testing.T) {
		tr := &fakeTranslator{translateErr: &domain.TranslationError{Source: domain.LangHindi, Target: domain.LangEnglish, Err: errors.New("down")}}
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, tr, retr, &fakeGenerator{answer: "उत्तर", multilingual: true})

		answer, err := svc.Answer(ctx, domain.Query{Text: "मेरे अधिकार?", Language: domain.LangHindi})
		require.NoError(t, err)
		assert.Equal(t, domain.StrategyFallbackNoTranslate, answer.Strategy)
		assert.Equal(t, "मेरे अधिकार?", retr.lastQuery, "retrieval runs on the original text")
		assert.Equal(t, "उत्तर", answer.Text, "the answer is not back-translated on the fallback path")
	})

	t.Run("Should fail the request when translation fails and the generator is English-only", func(t *testing.T) {
		tr := &fakeTranslator{translateErr: &domain.TranslationError{Source: domain.LangHindi, Target: domain.LangEnglish, Err: errors.New("down")}}
		svc := newTestService(t, tr, &fakeRetriever{}, &fakeGenerator{answer: "x"})

		_, err := svc.Answer(ctx, domain.Query{Text: "मेरे अधिकार?", Language: domain.LangHindi})
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StageTranslatedIn, stageErr.Stage)
		var trErr *domain.TranslationError
		assert.ErrorAs(t, err, &trErr)
	})

	t.Run("Should degrade to sources only when generation fails", func(t *testing.T) {
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		gen := &fakeGenerator{err: &domain.GenerationError{Err: errors.New("timeout")}}
		svc := newTestService(t, &fakeTranslator{}, retr, gen)

		answer, err := svc.Answer(ctx, domain.Query{Text: "question", Language: domain.LangEnglish, IncludeSources: true})
		require.NoError(t, err)
		assert.Equal(t, domain.DegradedSourcesOnly, answer.Degraded)
		assert.NotEmpty(t, answer.Text)
		require.Len(t, answer.Sources, 1)
	})

	t.Run("Should return the English answer marked untranslated when back-translation fails", func(t *testing.T) {
		tr := &fakeTranslator{
			toEnglish: map[string]string{"प्रश्न": "question"},
			outErr:    &domain.TranslationError{Source: domain.LangEnglish, Target: domain.LangHindi, Err: errors.New("down")},
		}
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, tr, retr, &fakeGenerator{answer: "English answer."})

		answer, err := svc.Answer(ctx, domain.Query{Text: "प्रश्न", Language: domain.LangHindi})
		require.NoError(t, err)
		assert.Equal(t, domain.DegradedUntranslated, answer.Degraded)
		assert.Equal(t, "English answer.", answer.Text)
		assert.Equal(t, domain.LangHindi, answer.Language)
	})

	t.Run("Should propagate an empty index as a retrieval stage error", func(t *testing.T) {
		retr := &fakeRetriever{err: &domain.IndexNotReadyError{}}
		svc := newTestService(t, &fakeTranslator{}, retr, &fakeGenerator{answer: "x"})

		_, err := svc.Answer(ctx, domain.Query{Text: "question", Language: domain.LangEnglish})
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StageRetrieved, stageErr.Stage)
		var notReady *domain.IndexNotReadyError
		assert.ErrorAs(t, err, &notReady)
	})

	t.Run("Should reject an empty question", func(t *testing.T) {
		svc := newTestService(t, &fakeTranslator{}, &fakeRetriever{}, &fakeGenerator{})
		_, err := svc.Answer(ctx, domain.Query{Text: "  "})
		var valErr *domain.ValidationError
		require.ErrorAs(t, err, &valErr)
	})

	t.Run("Should omit sources when not requested", func(t *testing.T) {
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, &fakeTranslator{}, retr, &fakeGenerator{answer: "x"})
		answer, err := svc.Answer(ctx, domain.Query{Text: "question", Language: domain.LangEnglish, IncludeSources: false})
		require.NoError(t, err)
		assert.Empty(t, answer.Sources)
	})
}

func TestAnswerBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should answer each item independently", func(t *testing.T) {
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, &fakeTranslator{}, retr, &fakeGenerator{answer: "answer"})

		items := svc.AnswerBatch(ctx, []domain.Query{
			{Text: "first question", Language: domain.LangEnglish},
			{Text: "   ", Language: domain.LangEnglish},
			{Text: "third question", Language: domain.LangEnglish},
		})
		require.Len(t, items, 3)
		assert.NoError(t, items[0].Err)
		assert.Equal(t, "answer", items[0].Answer.Text)
		var valErr *domain.ValidationError
		assert.ErrorAs(t, items[1].Err, &valErr)
		assert.NoError(t, items[2].Err, "a failed item must not abort the rest")
	})

	t.Run("Should stop on context cancellation and mark the remainder", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		svc := newTestService(t, &fakeTranslator{}, &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}, &fakeGenerator{answer: "x"})
		items := svc.AnswerBatch(cancelled, []domain.Query{
			{Text: "one", Language: domain.LangEnglish},
			{Text: "two", Language: domain.LangEnglish},
		})
		require.Len(t, items, 2)
		assert.ErrorIs(t, items[1].Err, context.Canceled)
	})
}

func TestDocumentSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Should summarize the matched document", func(t *testing.T) {
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, &fakeTranslator{}, retr, &fakeGenerator{summary: "It lists fundamental rights."})
		summary, err := svc.DocumentSummary(ctx, "constitution.txt")
		require.NoError(t, err)
		assert.Equal(t, "It lists fundamental rights.", summary.Text)
		assert.Equal(t, "constitution.txt", summary.Document)
		assert.Empty(t, summary.Degraded)
	})

	t.Run("Should report a missing document", func(t *testing.T) {
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		svc := newTestService(t, &fakeTranslator{}, retr, &fakeGenerator{summary: "x"})
		_, err := svc.DocumentSummary(ctx, "no-such-document.pdf")
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("Should fall back to the extractive summarizer when generation fails", func(t *testing.T) {
		retr := &fakeRetriever{results: []domain.SearchResult{rightsChunk()}}
		gen := &fakeGenerator{err: &domain.GenerationError{Err: errors.New("timeout")}}
		svc, err := New(&fakeTranslator{}, retr, gen, extractiveStub{}, &fakeIndex{count: 10}, 5)
		require.NoError(t, err)
		summary, err := svc.DocumentSummary(ctx, "constitution.txt")
		require.NoError(t, err)
		assert.Equal(t, "extract", summary.Text)
		assert.Equal(t, domain.DegradedSourcesOnly, summary.Degraded)
	})
}

type extractiveStub struct{}

func (extractiveStub) Summarize(string, int) (string, error) { return "extract", nil }

func TestHealth(t *testing.T) {
	t.Run("Should report ok with a populated index", func(t *testing.T) {
		svc := newTestService(t, &fakeTranslator{}, &fakeRetriever{}, &fakeGenerator{})
		h := svc.Health(context.Background())
		assert.Equal(t, "ok", h.Overall)
		assert.Equal(t, 10, h.IndexChunks)
	})

	t.Run("Should degrade when the index is empty", func(t *testing.T) {
		svc, err := New(&fakeTranslator{}, &fakeRetriever{}, &fakeGenerator{}, nil, &fakeIndex{count: 0}, 5)
		require.NoError(t, err)
		h := svc.Health(context.Background())
		assert.Equal(t, "degraded", h.Overall)
		assert.Equal(t, 0, h.IndexChunks)
	})
}
