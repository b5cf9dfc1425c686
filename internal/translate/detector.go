package translate

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"nyayabot/internal/domain"
)

// Detector classifies text into one of the supported languages. Hindi and
// Marathi share the Devanagari script, so a statistical detector is used
// instead of a script heuristic.
type Detector struct {
	inner lingua.LanguageDetector
}

// NewDetector builds a detector restricted to English, Hindi and Marathi.
func NewDetector() *Detector {
	inner := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Hindi, lingua.Marathi).
		Build()
	return &Detector{inner: inner}
}

// Detect returns the detected language, or a *domain.LanguageDetectionError
// when the text is empty, too short or ambiguous.
func (d *Detector) Detect(text string) (domain.Language, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &domain.LanguageDetectionError{Reason: "empty text"}
	}
	detected, ok := d.inner.DetectLanguageOf(trimmed)
	if !ok {
		return "", &domain.LanguageDetectionError{Reason: "text too short or ambiguous"}
	}
	switch detected {
	case lingua.English:
		return domain.LangEnglish, nil
	case lingua.Hindi:
		return domain.LangHindi, nil
	case lingua.Marathi:
		return domain.LangMarathi, nil
	default:
		return "", &domain.LanguageDetectionError{Reason: "unsupported language " + detected.String()}
	}
}
