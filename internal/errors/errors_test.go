package errors

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeToolNotFound, "tool not found", CategoryPermanent)
	assert.Equal(t, "[TOOL_NOT_FOUND] tool not found", err.Error())

	wrapped := Wrap(stderrors.New("boom"), CodeModelUnavailable, "model call failed", CategoryTemporary)
	assert.Equal(t, "[MODEL_UNAVAILABLE] model call failed: boom", wrapped.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeConfigInvalid, "nope", CategoryUser))
}

func TestWrap_KeepsRetryability(t *testing.T) {
	inner := Temporary(CodeModelTimeout, "timed out")
	wrapped := Wrap(inner, CodeModelUnavailable, "model call failed", CategoryTemporary)
	assert.True(t, wrapped.Retryable)
	assert.True(t, IsRetryable(wrapped))
}

func TestHasCode(t *testing.T) {
	err := Permanent(CodeToolLoopExceeded, "too many rounds")
	assert.True(t, HasCode(err, CodeToolLoopExceeded))
	assert.False(t, HasCode(err, CodeToolNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), CodeToolNotFound))

	// Wrapped chains still match.
	wrapped := Wrap(err, CodeModelInvalidResponse, "outer", CategoryTemporary)
	assert.True(t, HasCode(wrapped, CodeModelInvalidResponse))
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, CategoryUser, GetCategory(User(CodeConfigInvalid, "bad input")))
	assert.Equal(t, CategorySystem, GetCategory(System(CodeStoreFailed, "disk")))
	assert.Equal(t, CategoryTemporary, GetCategory(stderrors.New("plain")))
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	policy := &Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	err := Do(context.Background(), policy, func() error {
		attempts++
		if attempts < 3 {
			return Temporary(CodeNotifyFailed, "transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	attempts := 0
	policy := DefaultPolicy()
	policy.InitialDelay = time.Millisecond
	err := Do(context.Background(), policy, func() error {
		attempts++
		return Permanent(CodeConfigInvalid, "bad")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := DefaultPolicy()
	policy.InitialDelay = time.Hour
	err := Do(ctx, policy, func() error {
		return Temporary(CodeNotifyFailed, "transient")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoRetry(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), NoRetry(), func() error {
		attempts++
		return Temporary(CodeNotifyFailed, "transient")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
