package vectorstore

import (
	"context"

	"nyayabot/internal/domain"
)

// Storage is a similarity index over ingested chunks. Query-side callers
// treat it as read-only; it is loaded once at startup and shared across
// requests without locking.
type Storage interface {
	// Search returns up to topK chunks ordered by descending similarity.
	// Ties break by ingestion order. topK beyond the chunk count clamps
	// silently.
	Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error)
	// Count reports the number of indexed chunks.
	Count() int
	// Dimension reports the embedding dimensionality of the index.
	Dimension() int
}
