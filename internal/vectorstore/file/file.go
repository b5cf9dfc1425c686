package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"nyayabot/internal/domain"
)

const (
	vectorsFile = "vectors.json"
	chunksFile  = "chunks.json"
)

// vectorsPayload is the persisted nearest-neighbor side of the index.
// Vectors are stored L2-normalized in ingestion order.
type vectorsPayload struct {
	Model     string      `json:"model"`
	Dimension int         `json:"dimension"`
	Vectors   [][]float32 `json:"vectors"`
}

// chunksPayload is the parallel chunk-metadata store. It must stay in
// lock-step with vectors.json: same count, same ordering.
type chunksPayload struct {
	Chunks []domain.Chunk `json:"chunks"`
}

// Store is the file-backed vector index. Written once by the ingest
// command, loaded once at startup, read-only thereafter.
type Store struct {
	dir       string
	model     string
	dimension int
	vectors   [][]float32
	chunks    []domain.Chunk
}

// Open loads the persisted index from dir. It fails with a
// *domain.IndexLoadError when either file is absent, malformed, out of
// lock-step, or the stored model disagrees with wantModel (empty wantModel
// skips the check).
func Open(dir, wantModel string) (*Store, error) {
	var vp vectorsPayload
	if err := readJSON(filepath.Join(dir, vectorsFile), &vp); err != nil {
		return nil, &domain.IndexLoadError{Path: dir, Err: err}
	}
	var cp chunksPayload
	if err := readJSON(filepath.Join(dir, chunksFile), &cp); err != nil {
		return nil, &domain.IndexLoadError{Path: dir, Err: err}
	}
	if len(vp.Vectors) != len(cp.Chunks) {
		return nil, &domain.IndexLoadError{
			Path: dir,
			Err:  fmt.Errorf("index out of lock-step: %d vectors, %d chunks", len(vp.Vectors), len(cp.Chunks)),
		}
	}
	for i, v := range vp.Vectors {
		if len(v) != vp.Dimension {
			return nil, &domain.IndexLoadError{
				Path: dir,
				Err:  fmt.Errorf("vector %d has dimension %d, index declares %d", i, len(v), vp.Dimension),
			}
		}
	}
	if wantModel != "" && vp.Model != wantModel {
		return nil, &domain.IndexLoadError{
			Path: dir,
			Err:  fmt.Errorf("index was built with model %q, configured model is %q", vp.Model, wantModel),
		}
	}
	return &Store{
		dir:       dir,
		model:     vp.Model,
		dimension: vp.Dimension,
		vectors:   vp.Vectors,
		chunks:    cp.Chunks,
	}, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Model returns the embedding model the index was built with.
func (s *Store) Model() string { return s.model }

// Count returns the number of indexed chunks.
func (s *Store) Count() int { return len(s.chunks) }

// Dimension returns the embedding dimensionality of the index.
func (s *Store) Dimension() int { return s.dimension }

// Search runs brute-force cosine similarity over the index. Vectors are
// stored normalized, so the dot product is the cosine score. Results are
// reproducible: equal scores keep ingestion order.
func (s *Store) Search(_ context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(vector), s.dimension)
	}
	if topK < 1 {
		topK = 1
	}
	results := make([]domain.SearchResult, len(s.chunks))
	for i := range s.chunks {
		results[i] = domain.SearchResult{Chunk: s.chunks[i], Score: dot(s.vectors[i], vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Write persists a freshly built index to dir. Both files are written to
// temp paths first and renamed, so a crashed ingest never leaves a
// half-written index behind.
func Write(dir, model string, dimension int, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dimension)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	if vectors == nil {
		vectors = [][]float32{}
	}
	vp := vectorsPayload{Model: model, Dimension: dimension, Vectors: vectors}
	if err := writeJSON(filepath.Join(dir, vectorsFile), vp); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, chunksFile), chunksPayload{Chunks: chunks})
}

func writeJSON(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
