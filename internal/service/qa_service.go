package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nyayabot/internal/domain"
	"nyayabot/internal/logger"
)

// ErrDocumentNotFound reports that no chunks match the requested document.
var ErrDocumentNotFound = errors.New("document not found in the knowledge base")

// QAService orchestrates the answering pipeline:
// language resolution -> translate in -> retrieve -> generate -> translate out.
// Each request walks the stage machine strictly in order; a failure at any
// stage either resolves through a defined fallback or surfaces wrapped with
// the stage it originated from.
type QAService struct {
	translator  domain.Translator
	retriever   domain.Retriever
	generator   domain.Generator
	summarizer  domain.Summarizer
	index       IndexInfo
	defaultTopK int
}

// IndexInfo is the read-only view of the vector index used for health
// reporting; satisfied by every vectorstore backend.
type IndexInfo interface {
	Count() int
}

// New wires the pipeline components together.
func New(
	translator domain.Translator,
	retriever domain.Retriever,
	generator domain.Generator,
	summarizer domain.Summarizer,
	index IndexInfo,
	defaultTopK int,
) (*QAService, error) {
	if translator == nil || retriever == nil || generator == nil {
		return nil, errors.New("qa service: translator, retriever and generator are required")
	}
	if defaultTopK < 1 {
		defaultTopK = 5
	}
	return &QAService{
		translator:  translator,
		retriever:   retriever,
		generator:   generator,
		summarizer:  summarizer,
		index:       index,
		defaultTopK: defaultTopK,
	}, nil
}

// Answer runs one query through the full pipeline. The returned answer's
// language always matches the declared or detected query language; degraded
// outcomes (sources only, untranslated) are marked, never silent.
func (s *QAService) Answer(ctx context.Context, q domain.Query) (*domain.Answer, error) {
	log := logger.FromContext(ctx)
	if err := validateQuery(&q, s.defaultTopK); err != nil {
		return nil, err
	}

	// LANGUAGE_RESOLVED
	lang, err := s.resolveLanguage(ctx, q)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageLanguageResolved, Err: err}
	}
	log.Debug("language resolved", "declared", q.Language, "resolved", lang)

	// TRANSLATED_IN
	englishQuery := q.Text
	strategy := domain.StrategyDirect
	if lang != domain.LangEnglish {
		translated, strat, terr := s.translator.Translate(ctx, q.Text, lang, domain.LangEnglish)
		switch {
		case terr == nil:
			englishQuery = translated
			strategy = strat
		case s.generator.Multilingual():
			// The embedding space is multilingual, so retrieval still works
			// on the original text and the generator answers in lang.
			log.Warn("query translation failed, operating in source language", "language", lang, "error", terr)
			strategy = domain.StrategyFallbackNoTranslate
		default:
			return nil, &domain.StageError{Stage: domain.StageTranslatedIn, Err: terr}
		}
	}

	// RETRIEVED
	results, err := s.retriever.Retrieve(ctx, englishQuery, q.TopK)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageRetrieved, Err: err}
	}

	// GENERATED
	degraded := ""
	answerText, err := s.generator.Generate(ctx, englishQuery, results)
	if err != nil {
		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) {
			return nil, &domain.StageError{Stage: domain.StageGenerated, Err: err}
		}
		// The retrieved passages still carry informational value.
		log.Warn("generation failed, degrading to sources-only response", "error", err)
		degraded = domain.DegradedSourcesOnly
		answerText = "The answer could not be generated right now. The most relevant passages from the legal corpus are listed as sources."
	}

	// TRANSLATED_OUT
	finalText := answerText
	if lang != domain.LangEnglish && degraded == "" && strategy != domain.StrategyFallbackNoTranslate {
		translated, _, terr := s.translator.Translate(ctx, answerText, domain.LangEnglish, lang)
		if terr != nil {
			// Returning English with a marker beats dropping the answer.
			log.Warn("answer translation failed, returning English answer", "language", lang, "error", terr)
			degraded = domain.DegradedUntranslated
		} else {
			finalText = translated
		}
	}

	// RESPONDED
	answer := &domain.Answer{
		Text:          finalText,
		Language:      lang,
		OriginalQuery: q.Text,
		EnglishQuery:  englishQuery,
		Strategy:      strategy,
		Degraded:      degraded,
	}
	if q.IncludeSources {
		answer.Sources = results
	}
	return answer, nil
}

// AnswerBatch applies the per-item contract independently; one item's
// failure never aborts the rest. Items run sequentially to keep a single
// in-flight generation on the accelerator.
func (s *QAService) AnswerBatch(ctx context.Context, queries []domain.Query) []domain.BatchItem {
	items := make([]domain.BatchItem, len(queries))
	for i := range queries {
		answer, err := s.Answer(ctx, queries[i])
		items[i] = domain.BatchItem{Answer: answer, Err: err}
		if ctx.Err() != nil {
			for j := i + 1; j < len(items); j++ {
				items[j] = domain.BatchItem{Err: ctx.Err()}
			}
			break
		}
	}
	return items
}

// DocumentSummary retrieves the top chunks of the named document and
// generates a synopsis. When generation fails, the extractive summarizer
// produces a degraded summary from the same chunks.
func (s *QAService) DocumentSummary(ctx context.Context, document string) (*domain.Summary, error) {
	if strings.TrimSpace(document) == "" {
		return nil, &domain.ValidationError{Field: "document", Reason: "must not be empty"}
	}
	results, err := s.retriever.Retrieve(ctx, document, 3)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if strings.EqualFold(r.Chunk.Document, document) || strings.Contains(strings.ToLower(r.Chunk.Document), strings.ToLower(document)) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, document)
	}
	var texts []string
	for _, r := range matched {
		texts = append(texts, r.Chunk.Text)
	}
	fullText := strings.Join(texts, "\n")
	summary, err := s.generator.Summarize(ctx, fullText)
	if err != nil {
		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) || s.summarizer == nil {
			return nil, err
		}
		logger.FromContext(ctx).Warn("summary generation failed, using extractive summary", "error", err)
		extract, serr := s.summarizer.Summarize(fullText, 5)
		if serr != nil {
			return nil, err
		}
		return &domain.Summary{Text: extract, Document: matched[0].Chunk.Document, Degraded: domain.DegradedSourcesOnly}, nil
	}
	return &domain.Summary{Text: summary, Document: matched[0].Chunk.Document}, nil
}

// Health reports per-component status for the health endpoint.
func (s *QAService) Health(_ context.Context) domain.Health {
	h := domain.Health{Overall: "ok", Retriever: "ok", Generator: "ok", Translator: "ok"}
	if s.index != nil {
		h.IndexChunks = s.index.Count()
		if h.IndexChunks == 0 {
			h.Retriever = "empty index"
			h.Overall = "degraded"
		}
	}
	return h
}

func (s *QAService) resolveLanguage(ctx context.Context, q domain.Query) (domain.Language, error) {
	if q.Language != domain.LangAuto {
		return q.Language, nil
	}
	detected, err := s.translator.Detect(ctx, q.Text)
	if err != nil {
		var detErr *domain.LanguageDetectionError
		if errors.As(err, &detErr) {
			// Degraded path, never fatal: treat undetectable text as English.
			logger.FromContext(ctx).Warn("language detection failed, treating query as English", "error", err)
			return domain.LangEnglish, nil
		}
		return "", err
	}
	return detected, nil
}

func validateQuery(q *domain.Query, defaultTopK int) error {
	if strings.TrimSpace(q.Text) == "" {
		return &domain.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if q.Language == "" {
		q.Language = domain.LangAuto
	}
	switch q.Language {
	case domain.LangEnglish, domain.LangHindi, domain.LangMarathi, domain.LangAuto:
	default:
		return &domain.ValidationError{Field: "language", Reason: fmt.Sprintf("unsupported language %q", q.Language)}
	}
	if q.TopK == 0 {
		q.TopK = defaultTopK
	}
	if q.TopK < 1 {
		return &domain.ValidationError{Field: "top_k", Reason: "must be at least 1"}
	}
	return nil
}
