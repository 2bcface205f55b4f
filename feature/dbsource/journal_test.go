package dbsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(setupSQLite(t))
	require.NoError(t, j.Migrate(ctx))

	ok := &SyncRun{Worksheet: "People", Mode: "update", CellUpdates: 3, StartedAt: time.Now()}
	ok.Finish(nil)
	require.NoError(t, j.Record(ctx, ok))

	failed := &SyncRun{Worksheet: "People", Mode: "augment", StartedAt: time.Now()}
	failed.Finish(errors.New("WRITE_CONFLICT"))
	require.NoError(t, j.Record(ctx, failed))

	other := &SyncRun{Worksheet: "Stock", Mode: "write", StartedAt: time.Now()}
	other.Finish(nil)
	require.NoError(t, j.Record(ctx, other))

	runs, err := j.Recent(ctx, "People", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "augment", runs[0].Mode)
	assert.Equal(t, StatusError, runs[0].Status)
	assert.Equal(t, "WRITE_CONFLICT", runs[0].Error)
	assert.Equal(t, StatusOK, runs[1].Status)
	assert.Equal(t, 3, runs[1].CellUpdates)

	all, err := j.Recent(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Stock", all[0].Worksheet)
}
