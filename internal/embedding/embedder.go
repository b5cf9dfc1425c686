package embedding

import "context"

// Embedder converts free text into a fixed-dimension vector in the same
// space as the indexed chunks.
type Embedder interface {
	Model() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
