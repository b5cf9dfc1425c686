package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"nyayabot/internal/config"
	"nyayabot/internal/domain"
)

// maxContextChars bounds the passage context handed to the model so the
// prompt stays inside the serving backend's window.
const maxContextChars = 4096

const systemPrompt = `You are a legal information assistant for citizens of Maharashtra.
Answer the question in simple, easy-to-understand language.
Use ONLY the provided context passages. Do not use outside knowledge and do not assert anything the passages do not support.
If the passages do not contain enough information, say so plainly.
This is general legal information, not legal advice.`

// InsufficientAnswer is returned when retrieval produced no passages.
// Generating without grounding material would invite fabricated answers.
const InsufficientAnswer = "I could not find relevant information in the available legal documents to answer your question. Please try rephrasing it or ask about a different topic."

// Generator produces grounded answers through an OpenAI-compatible chat
// completion endpoint. The model runs on a fixed accelerator budget; the
// reduced-precision knob selects the backend's quantized variant and is
// invisible to callers.
type Generator struct {
	client       *openai.Client
	model        string
	maxTokens    int
	timeout      time.Duration
	multilingual bool
}

// New creates a Generator from the generator config.
func New(cfg config.GeneratorConfig) (*Generator, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && cfg.APIKeyEnv != "" {
		key = "unused"
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if cfg.ReducedPrecision {
		model = model + "-int8"
	}
	return &Generator{
		client:       openai.NewClientWithConfig(oc),
		model:        model,
		maxTokens:    cfg.MaxTokens,
		timeout:      time.Duration(cfg.TimeoutSecs) * time.Second,
		multilingual: cfg.Multilingual,
	}, nil
}

// Multilingual reports whether the generator can answer directly in Hindi
// or Marathi when translation is unavailable.
func (g *Generator) Multilingual() bool { return g.multilingual }

// Generate answers the query using only the supplied passages. An empty
// passage list short-circuits to InsufficientAnswer without touching the
// model. Timeouts and backend failures surface as *domain.GenerationError.
func (g *Generator) Generate(ctx context.Context, query string, passages []domain.SearchResult) (string, error) {
	if len(passages) == 0 {
		return InsufficientAnswer, nil
	}
	prompt := fmt.Sprintf("Question: %s\n\nContext:\n%s\n\nAnswer:", query, buildContext(passages))
	return g.complete(ctx, prompt)
}

// Summarize produces a citizen-friendly synopsis of the given document text.
func (g *Generator) Summarize(ctx context.Context, text string) (string, error) {
	if len(text) > maxContextChars {
		text = text[:maxContextChars]
	}
	prompt := fmt.Sprintf("Summarize the following legal text for a citizen, in plain language:\n\n%s\n\nSummary:", text)
	return g.complete(ctx, prompt)
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &domain.GenerationError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.GenerationError{Err: errors.New("model returned no choices")}
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", &domain.GenerationError{Err: errors.New("model returned an empty answer")}
	}
	return answer, nil
}

// buildContext formats passages with their provenance, highest-scoring
// first, truncating once the character budget is spent.
func buildContext(passages []domain.SearchResult) string {
	var parts []string
	total := 0
	for _, p := range passages {
		src := p.Chunk.Document
		if p.Chunk.Page > 0 {
			src = fmt.Sprintf("%s, page %d", src, p.Chunk.Page)
		}
		part := fmt.Sprintf("[Source: %s]\n%s", src, p.Chunk.Text)
		if total+len(part) > maxContextChars && len(parts) > 0 {
			break
		}
		parts = append(parts, part)
		total += len(part)
	}
	return strings.Join(parts, "\n---\n")
}
