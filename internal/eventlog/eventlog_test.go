package eventlog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examgate/examgate/internal/db"
)

func TestRecordAndRecent(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := NewRepo(conn)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "AttemptStarted", "a1", map[string]string{"exam": "e1"}))
	require.NoError(t, repo.Record(ctx, "AttemptSubmitted", "a1", map[string]int{"score": 2}))
	require.NoError(t, repo.Record(ctx, "AttemptStarted", "a2", nil))

	events, err := repo.Recent(ctx, "a1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "AttemptSubmitted", events[0].Type, "newest first")
	assert.Equal(t, "AttemptStarted", events[1].Type)
	assert.JSONEq(t, `{"score":2}`, events[0].DataJSON)
	assert.Greater(t, events[0].Seq, events[1].Seq)

	none, err := repo.Recent(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
