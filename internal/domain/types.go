package domain

import "fmt"

// Language is the closed set of languages understood by the service,
// plus the "auto" sentinel asking the pipeline to detect the language.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangMarathi Language = "mr"
	LangAuto    Language = "auto"
)

// ParseLanguage maps a request language code onto the closed enum.
// An empty code means "auto".
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case "":
		return LangAuto, nil
	case LangEnglish, LangHindi, LangMarathi, LangAuto:
		return Language(code), nil
	default:
		return "", &ValidationError{Field: "language", Reason: fmt.Sprintf("unsupported language %q (use en, hi, mr or auto)", code)}
	}
}

// Name returns the human-readable name of the language.
func (l Language) Name() string {
	switch l {
	case LangEnglish:
		return "English"
	case LangHindi:
		return "Hindi"
	case LangMarathi:
		return "Marathi"
	case LangAuto:
		return "auto-detect"
	default:
		return string(l)
	}
}

// Document is a single source document handed to the chunker at ingestion time.
// PDF documents are split per page before chunking, so Page carries provenance.
type Document struct {
	Name    string
	Page    int
	Content string
}

// Chunk is the immutable unit of retrievable text. Chunks are created once
// by the ingestion pipeline and never mutated afterwards; Index records the
// ingestion order and doubles as the tie-breaker for equal similarity scores.
type Chunk struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Document string `json:"document"`
	Page     int    `json:"page,omitempty"`
	Index    int    `json:"index"`
}

// Query is one request-scoped question.
type Query struct {
	Text           string
	Language       Language
	TopK           int
	IncludeSources bool
}

// SearchResult is a retrieved chunk with its cosine similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// TranslationStrategy records how the query text reached the retriever.
type TranslationStrategy string

const (
	// StrategyDirect means the query was translated (or needed no translation).
	StrategyDirect TranslationStrategy = "direct"
	// StrategyCached means the translation was served from the read-through cache.
	StrategyCached TranslationStrategy = "cached"
	// StrategyFallbackNoTranslate means translation failed and the pipeline
	// operated on the original-language text.
	StrategyFallbackNoTranslate TranslationStrategy = "fallback-no-translate"
)

// Stage identifies a step of the per-request pipeline state machine.
type Stage string

const (
	StageReceived         Stage = "RECEIVED"
	StageLanguageResolved Stage = "LANGUAGE_RESOLVED"
	StageTranslatedIn     Stage = "TRANSLATED_IN"
	StageRetrieved        Stage = "RETRIEVED"
	StageGenerated        Stage = "GENERATED"
	StageTranslatedOut    Stage = "TRANSLATED_OUT"
	StageResponded        Stage = "RESPONDED"
)

// Degraded markers attached to responses that completed with reduced fidelity.
const (
	// DegradedSourcesOnly means answer generation failed and only the
	// retrieved passages carry informational value.
	DegradedSourcesOnly = "sources_only"
	// DegradedUntranslated means the answer could not be translated back to
	// the query language and is returned in English.
	DegradedUntranslated = "untranslated"
)

// Answer is the generated answer paired with the retrieval results that
// produced it. It lives for exactly one request/response cycle.
type Answer struct {
	Text          string
	Language      Language
	OriginalQuery string
	EnglishQuery  string
	Sources       []SearchResult
	Strategy      TranslationStrategy
	Degraded      string
}

// Summary is a generated synopsis of a single source document.
type Summary struct {
	Text     string
	Document string
	Degraded string
}

// Health reports the status of each pipeline component.
type Health struct {
	Overall     string `json:"overall"`
	Retriever   string `json:"retriever"`
	Generator   string `json:"generator"`
	Translator  string `json:"translator"`
	IndexChunks int    `json:"index_chunks"`
}
