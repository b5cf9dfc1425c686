package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"nyayabot/internal/config"
)

// OpenAIClient talks to an OpenAI-compatible embeddings endpoint. The legal
// corpus is embedded with a multilingual sentence-transformer served behind
// such an endpoint, so queries land in the same vector space as the index.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	dimension int
	timeout   time.Duration
}

// NewOpenAIClient creates an embeddings client from the embedder config.
func NewOpenAIClient(cfg config.EmbedderConfig) (*OpenAIClient, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && cfg.APIKeyEnv != "" {
		// Local serving backends usually accept any token.
		key = "unused"
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// Model returns the configured embedding model identifier.
func (c *OpenAIClient) Model() string { return c.model }

// Dimension returns the vector dimensionality, known after the first call.
func (c *OpenAIClient) Dimension() int { return c.dimension }

// Embed returns an L2-normalized embedding vector for the given text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds several texts in one round-trip.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings request: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for i := range d.Embedding {
			v[i] = float32(d.Embedding[i])
		}
		l2normalize(v)
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings request: out-of-range index %d", d.Index)
		}
		vectors[d.Index] = v
	}
	if c.dimension == 0 && len(vectors[0]) > 0 {
		c.dimension = len(vectors[0])
	}
	return vectors, nil
}

// l2normalize scales a vector to unit length so dot product equals cosine
// similarity.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
