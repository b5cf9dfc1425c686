package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ledongthuc/pdf"

	"nyayabot/internal/chunker"
	"nyayabot/internal/config"
	"nyayabot/internal/domain"
	"nyayabot/internal/embedding"
	"nyayabot/internal/logger"
	"nyayabot/internal/vectorstore/file"
	"nyayabot/internal/vectorstore/qdrant"
)

// The ingest command is the offline half of the system: it reads the legal
// document corpus, splits it into chunks, embeds them and writes the
// persisted index the API server loads at startup. It never runs while the
// server is answering queries.
func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		docsDir string
	)
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.StringVar(&docsDir, "docs", "data/legal_docs", "Directory containing .txt, .md and .pdf legal documents")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.New("error").Fatal("failed to load config", "path", cfgPath, "error", err)
	}
	log := logger.New(cfg.LogLevel)
	ctx := logger.ContextWithLogger(context.Background(), log)

	documents, err := loadDocuments(docsDir)
	if err != nil {
		log.Fatal("failed to read documents", "dir", docsDir, "error", err)
	}
	log.Info("documents loaded", "count", len(documents))

	ck := chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	var chunks []domain.Chunk
	for _, doc := range documents {
		cs, err := ck.Chunk(doc)
		if err != nil {
			log.Fatal("failed to chunk document", "document", doc.Name, "error", err)
		}
		chunks = append(chunks, cs...)
	}
	// Ingestion order is the index order and the similarity tie-breaker.
	for i := range chunks {
		chunks[i].Index = i
	}
	log.Info("documents chunked", "chunks", len(chunks))

	embedder, err := embedding.NewOpenAIClient(cfg.Embedder)
	if err != nil {
		log.Fatal("failed to create embedding client", "error", err)
	}
	vectors := make([][]float32, 0, len(chunks))
	batch := cfg.Embedder.BatchSize
	for start := 0; start < len(chunks); start += batch {
		end := start + batch
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		vs, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			log.Fatal("failed to embed chunks", "batch_start", start, "error", err)
		}
		vectors = append(vectors, vs...)
		log.Info("embedded batch", "done", end, "total", len(chunks))
	}

	if err := writeIndex(ctx, cfg, chunks, vectors, embedder.Dimension()); err != nil {
		log.Fatal("failed to write index", "error", err)
	}
	log.Info("index written", "backend", cfg.Index.Backend, "chunks", len(chunks), "dimension", embedder.Dimension())
}

func writeIndex(ctx context.Context, cfg *config.AppConfig, chunks []domain.Chunk, vectors [][]float32, dimension int) error {
	switch cfg.Index.Backend {
	case "file", "":
		return file.Write(cfg.Index.Dir, cfg.Embedder.Model, dimension, chunks, vectors)
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			return fmt.Errorf("qdrant backend selected but index.qdrant config is missing")
		}
		store := qdrant.Connect(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     os.Getenv(cfg.Index.Qdrant.APIKeyEnv),
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		})
		if err := store.Clear(ctx); err != nil {
			return err
		}
		if err := store.Init(ctx, dimension); err != nil {
			return err
		}
		return store.Upsert(ctx, chunks, vectors)
	default:
		return fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}
}

func loadDocuments(dir string) ([]domain.Document, error) {
	var documents []domain.Document
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			documents = append(documents, domain.Document{Name: d.Name(), Content: string(data)})
		case ".pdf":
			pages, err := readPDF(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			for i, content := range pages {
				if strings.TrimSpace(content) == "" {
					continue
				}
				documents = append(documents, domain.Document{Name: d.Name(), Page: i + 1, Content: content})
			}
		}
		return nil
	})
	return documents, err
}

// readPDF extracts per-page plain text so chunks keep page provenance.
func readPDF(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
