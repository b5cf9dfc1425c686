package domain

import "fmt"

// LanguageDetectionError reports that query text could not be classified
// into a supported language. Callers fall back to English.
type LanguageDetectionError struct {
	Reason string
}

func (e *LanguageDetectionError) Error() string {
	return "language detection failed: " + e.Reason
}

// TranslationError reports a failed translation round-trip.
type TranslationError struct {
	Source Language
	Target Language
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation %s->%s failed: %v", e.Source, e.Target, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// IndexNotReadyError means the vector index holds no chunks. Fatal for the
// request, recoverable for the process.
type IndexNotReadyError struct{}

func (e *IndexNotReadyError) Error() string {
	return "no knowledge base available: the vector index is empty, run the ingest command first"
}

// IndexLoadError means the persisted index could not be loaded at startup.
type IndexLoadError struct {
	Path string
	Err  error
}

func (e *IndexLoadError) Error() string {
	return fmt.Sprintf("loading vector index from %s: %v", e.Path, e.Err)
}

func (e *IndexLoadError) Unwrap() error { return e.Err }

// GenerationError reports that answer generation timed out or failed.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError rejects a malformed request before it enters the pipeline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StageError wraps an error with the pipeline stage it originated from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
