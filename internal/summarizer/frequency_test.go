package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := NewFrequencySummarizer()

	t.Run("Should return short text unchanged", func(t *testing.T) {
		out, err := s.Summarize("No terminal punctuation", 5)
		require.NoError(t, err)
		assert.Equal(t, "No terminal punctuation", out)
	})

	t.Run("Should keep the requested number of sentences", func(t *testing.T) {
		text := "Consumer rights protect buyers. Consumer complaints need documents. The weather was pleasant. Consumer forums hear consumer disputes."
		out, err := s.Summarize(text, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "."))
	})

	t.Run("Should prefer sentences about the dominant topic", func(t *testing.T) {
		text := "Consumer rights protect buyers from unfair trade. Consumer complaints about consumer goods go to consumer forums. Unrelated filler text here."
		out, err := s.Summarize(text, 1)
		require.NoError(t, err)
		assert.Contains(t, strings.ToLower(out), "consumer")
	})

	t.Run("Should preserve original sentence order in the summary", func(t *testing.T) {
		text := "Alpha rights matter here. Beta rights matter here. Gamma rights matter here."
		out, err := s.Summarize(text, 3)
		require.NoError(t, err)
		assert.True(t, strings.Index(out, "Alpha") < strings.Index(out, "Beta"))
		assert.True(t, strings.Index(out, "Beta") < strings.Index(out, "Gamma"))
	})

	t.Run("Should clamp when asked for more sentences than exist", func(t *testing.T) {
		out, err := s.Summarize("Only one sentence here.", 10)
		require.NoError(t, err)
		assert.Equal(t, "Only one sentence here.", out)
	})

	t.Run("Should handle Devanagari sentences", func(t *testing.T) {
		text := "उपभोक्ता अधिकार महत्वपूर्ण हैं। उपभोक्ता शिकायत दर्ज कर सकते हैं।"
		out, err := s.Summarize(text, 1)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
		assert.True(t, strings.HasSuffix(out, "।"))
	})
}
