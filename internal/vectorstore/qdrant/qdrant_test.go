package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyayabot/internal/domain"
)

func TestOpen(t *testing.T) {
	t.Run("Should read dimension and count from the collection info", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/collections/legal_chunks", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"points_count": 7,
					"config": map[string]any{
						"params": map[string]any{
							"vectors": map[string]any{"size": 384},
						},
					},
				},
			})
		}))
		defer srv.Close()

		store, err := Open(context.Background(), Config{URL: srv.URL, Collection: "legal_chunks"})
		require.NoError(t, err)
		assert.Equal(t, 7, store.Count())
		assert.Equal(t, 384, store.Dimension())
	})

	t.Run("Should fail with IndexLoadError when the collection is missing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := Open(context.Background(), Config{URL: srv.URL, Collection: "legal_chunks"})
		var loadErr *domain.IndexLoadError
		require.ErrorAs(t, err, &loadErr)
	})

	t.Run("Should fail with IndexLoadError on a schemaless collection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{}})
		}))
		defer srv.Close()

		_, err := Open(context.Background(), Config{URL: srv.URL, Collection: "legal_chunks"})
		var loadErr *domain.IndexLoadError
		require.ErrorAs(t, err, &loadErr)
	})
}

func TestSearch(t *testing.T) {
	t.Run("Should map payloads back onto chunks", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				json.NewEncoder(w).Encode(map[string]any{
					"result": map[string]any{
						"points_count": 1,
						"config":       map[string]any{"params": map[string]any{"vectors": map[string]any{"size": 2}}},
					},
				})
				return
			}
			require.Equal(t, "/collections/legal_chunks/points/search", r.URL.Path)
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, float64(3), req["limit"])
			json.NewEncoder(w).Encode(map[string]any{
				"result": []map[string]any{
					{
						"score": 0.91,
						"payload": map[string]any{
							"chunk_id": "constitution.txt:0",
							"document": "constitution.txt",
							"page":     12,
							"index":    0,
							"text":     "Part III guarantees fundamental rights.",
						},
					},
				},
			})
		}))
		defer srv.Close()

		store, err := Open(context.Background(), Config{URL: srv.URL, Collection: "legal_chunks"})
		require.NoError(t, err)
		results, err := store.Search(context.Background(), []float32{1, 0}, 3)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "constitution.txt:0", results[0].Chunk.ID)
		assert.Equal(t, 12, results[0].Chunk.Page)
		assert.InDelta(t, 0.91, float64(results[0].Score), 1e-6)
	})
}
