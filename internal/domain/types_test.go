package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	t.Run("Should accept the supported codes", func(t *testing.T) {
		for _, code := range []string{"en", "hi", "mr", "auto"} {
			lang, err := ParseLanguage(code)
			require.NoError(t, err)
			assert.Equal(t, Language(code), lang)
		}
	})

	t.Run("Should treat an empty code as auto", func(t *testing.T) {
		lang, err := ParseLanguage("")
		require.NoError(t, err)
		assert.Equal(t, LangAuto, lang)
	})

	t.Run("Should reject unknown codes", func(t *testing.T) {
		_, err := ParseLanguage("fr")
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "language", valErr.Field)
	})
}

func TestErrorWrapping(t *testing.T) {
	t.Run("Should unwrap through stage errors", func(t *testing.T) {
		inner := &IndexNotReadyError{}
		err := &StageError{Stage: StageRetrieved, Err: inner}
		var notReady *IndexNotReadyError
		assert.ErrorAs(t, err, &notReady)
	})

	t.Run("Should unwrap translation errors to their cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &TranslationError{Source: LangHindi, Target: LangEnglish, Err: cause}
		assert.ErrorIs(t, err, cause)
	})
}
