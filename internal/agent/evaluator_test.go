package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
)

func TestParseVerdict_FencedJSON(t *testing.T) {
	text := "Here is my evaluation:\n```json\n{\"is_acceptable\": false, \"feedback\": \"Too casual.\"}\n```\nDone."

	v, err := ParseVerdict(text)
	require.NoError(t, err)
	assert.False(t, v.IsAcceptable)
	assert.Equal(t, "Too casual.", v.Feedback)
}

func TestParseVerdict_UnfencedJSONRejected(t *testing.T) {
	// Even valid JSON is malformed without the fence the evaluator is
	// instructed to produce.
	_, err := ParseVerdict(`{"is_acceptable": false, "feedback": "bad"}`)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEvalMalformed))
}

func TestParseVerdict_FencedNotJSON(t *testing.T) {
	_, err := ParseVerdict("```json\nlooks fine to me\n```")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEvalMalformed))
}

func TestParseVerdict_UnterminatedFence(t *testing.T) {
	_, err := ParseVerdict("```json\n{\"is_acceptable\": true}")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEvalMalformed))
}

func TestParseVerdict_NotJSON(t *testing.T) {
	_, err := ParseVerdict("the reply looks fine to me")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEvalMalformed))
}

func TestParseVerdict_MissingAcceptableField(t *testing.T) {
	_, err := ParseVerdict("```json\n{\"feedback\": \"no verdict\"}\n```")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEvalMalformed))
}
