package translate

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"nyayabot/internal/domain"
	"nyayabot/internal/logger"
)

// Backend performs the actual translation round-trip. Split out so the
// pipeline can be tested without a translation service.
type Backend interface {
	Translate(ctx context.Context, text string, source, target domain.Language) (string, error)
}

// Translator composes language detection, the translation backend and a
// read-through LRU cache. The cache is the only mutable shared structure in
// the process; golang-lru is safe for concurrent use and entries are never
// mutated in place.
type Translator struct {
	detector *Detector
	backend  Backend
	cache    *lru.Cache[cacheKey, string]
}

type cacheKey struct {
	source domain.Language
	target domain.Language
	text   string
}

// New builds a Translator. cacheSize <= 0 gets a small default.
func New(detector *Detector, backend Backend, cacheSize int) (*Translator, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[cacheKey, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Translator{detector: detector, backend: backend, cache: cache}, nil
}

// Detect classifies the text into a supported language.
func (t *Translator) Detect(_ context.Context, text string) (domain.Language, error) {
	return t.detector.Detect(text)
}

// Translate converts text between supported languages. A source of
// LangAuto triggers detection first; detection failure degrades to English
// rather than failing the request. Cache hits bypass the backend entirely
// and are byte-identical to the original result.
func (t *Translator) Translate(ctx context.Context, text string, source, target domain.Language) (string, domain.TranslationStrategy, error) {
	if source == domain.LangAuto {
		detected, err := t.detector.Detect(text)
		if err != nil {
			logger.FromContext(ctx).Warn("language detection failed, treating text as English", "error", err)
			detected = domain.LangEnglish
		}
		source = detected
	}
	if source == target {
		return text, domain.StrategyDirect, nil
	}
	key := cacheKey{source: source, target: target, text: text}
	if cached, ok := t.cache.Get(key); ok {
		return cached, domain.StrategyCached, nil
	}
	out, err := t.backend.Translate(ctx, text, source, target)
	if err != nil {
		return "", "", err
	}
	t.cache.Add(key, out)
	return out, domain.StrategyDirect, nil
}
