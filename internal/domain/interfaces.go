package domain

import "context"

// Translator converts text between the supported languages and classifies
// the language of raw query text.
type Translator interface {
	// Detect classifies text into one of the supported languages. It returns
	// a *LanguageDetectionError when the text is too short or ambiguous.
	Detect(ctx context.Context, text string) (Language, error)
	// Translate converts text from source to target. source may be LangAuto,
	// in which case the text is classified first (falling back to English on
	// detection failure). The returned strategy reports whether the result
	// came from the cache.
	Translate(ctx context.Context, text string, source, target Language) (string, TranslationStrategy, error)
}

// Retriever embeds an English query and looks up the nearest chunks.
type Retriever interface {
	Retrieve(ctx context.Context, queryEN string, topK int) ([]SearchResult, error)
}

// Generator produces a natural-language answer grounded in the supplied
// passages. An empty passage list is legal and yields a graceful
// "insufficient information" answer.
type Generator interface {
	Generate(ctx context.Context, queryEN string, passages []SearchResult) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	// Multilingual reports whether the generator can be trusted to answer
	// directly in Hindi or Marathi when translation is unavailable.
	Multilingual() bool
}

// Summarizer produces a brief extract of the provided text without calling
// a model; used as the degraded path when generation fails.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// QAService is the orchestrated question-answering contract exposed to the
// request layer.
type QAService interface {
	Answer(ctx context.Context, q Query) (*Answer, error)
	AnswerBatch(ctx context.Context, qs []Query) []BatchItem
	DocumentSummary(ctx context.Context, document string) (*Summary, error)
	Health(ctx context.Context) Health
}

// BatchItem is the independent outcome of one batch entry.
type BatchItem struct {
	Answer *Answer
	Err    error
}
