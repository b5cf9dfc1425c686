package retriever

import (
	"context"
	"fmt"
	"strings"

	"nyayabot/internal/domain"
	"nyayabot/internal/embedding"
	"nyayabot/internal/logger"
	"nyayabot/internal/vectorstore"
)

// Retriever embeds a query and looks up the nearest chunks in the vector
// index. The index is read-only for the process lifetime, so repeated calls
// with the same query embedding return identical ordered results.
type Retriever struct {
	embedder embedding.Embedder
	store    vectorstore.Storage
}

// New creates a Retriever over the given embedder and index.
func New(embedder embedding.Embedder, store vectorstore.Storage) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("retriever: embedder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("retriever: vector store is required")
	}
	return &Retriever{embedder: embedder, store: store}, nil
}

// Retrieve returns up to topK chunks ordered by descending similarity.
// An empty index surfaces *domain.IndexNotReadyError; topK beyond the
// chunk count clamps silently inside the store.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if topK < 1 {
		return nil, &domain.ValidationError{Field: "top_k", Reason: "must be at least 1"}
	}
	if r.store.Count() == 0 {
		return nil, &domain.IndexNotReadyError{}
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if dim := r.store.Dimension(); len(vector) != dim {
		return nil, fmt.Errorf("query embedding dimension %d does not match index dimension %d", len(vector), dim)
	}
	results, err := r.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.FromContext(ctx).Debug("retrieved chunks", "results", len(results), "top_k", topK)
	return results, nil
}
