package syncerr_test

import (
	"errors"
	"fmt"
	"testing"

	"gridsync/core/syncerr"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"Schema", syncerr.Schema("column %q not found", "x"), syncerr.ErrSchema},
		{"SchemaMismatch", syncerr.SchemaMismatch("a != b"), syncerr.ErrSchemaMismatch},
		{"Index", syncerr.Index("duplicate key %v", 1), syncerr.ErrIndex},
		{"WriteConflict", syncerr.WriteConflict("cell A2 not empty"), syncerr.ErrWriteConflict},
		{"Remote", syncerr.Remote("get_range", errors.New("boom")), syncerr.ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			wrapped := fmt.Errorf("sync failed: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}

	assert.NotErrorIs(t, syncerr.Schema("x"), syncerr.ErrIndex)
}

func TestError_Message(t *testing.T) {
	err := syncerr.Schema("column %q not found", "age").WithOp("read")
	assert.Equal(t, `read: SCHEMA: column "age" not found`, err.Error())

	cause := errors.New("429 rate limited")
	remote := syncerr.Remote("set_range", cause)
	assert.Equal(t, "set_range: REMOTE: 429 rate limited", remote.Error())
	assert.ErrorIs(t, remote, cause)
}

func TestRemote(t *testing.T) {
	assert.NoError(t, syncerr.Remote("op", nil))

	first := syncerr.Remote("inner", errors.New("x"))
	second := syncerr.Remote("outer", first)
	assert.Same(t, first, second)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, syncerr.IsRetryable(syncerr.Remote("op", errors.New("x"))))
	assert.False(t, syncerr.IsRetryable(syncerr.WriteConflict("x")))
	assert.False(t, syncerr.IsRetryable(errors.New("plain")))
	assert.Equal(t, syncerr.Kind(""), syncerr.KindOf(errors.New("plain")))
	assert.Equal(t, syncerr.KindIndex, syncerr.KindOf(fmt.Errorf("w: %w", syncerr.Index("dup"))))
}
