package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autodoc/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "report_log.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_AppendAndReadAll(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	want := model.LogEntry{
		ReportID:       "RPT-20260314-093000-a1b2c3",
		Project:        "Substation 12 Retrofit",
		Engineer:       "D. Okafor",
		ComponentCount: 42,
		Status:         model.RunStatusSuccess,
		GeneratedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		OutputPath:     "generated_reports/RPT-20260314-093000-a1b2c3_Substation_12_Retrofit.pdf",
	}
	require.NoError(t, st.Append(ctx, want))

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, want.ReportID, got.ReportID)
	assert.Equal(t, want.Project, got.Project)
	assert.Equal(t, want.Engineer, got.Engineer)
	assert.Equal(t, want.ComponentCount, got.ComponentCount)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.OutputPath, got.OutputPath)
	assert.True(t, got.GeneratedAt.Equal(want.GeneratedAt))
}

func TestSQLite_ReadAll_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	entries, err := st.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLite_ReadAll_PreservesAppendOrder(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"RPT-c", "RPT-a", "RPT-b"} {
		require.NoError(t, st.Append(ctx, model.LogEntry{
			ReportID:    id,
			Project:     "proj",
			Status:      model.RunStatusSuccess,
			GeneratedAt: ts,
		}))
	}

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "RPT-c", entries[0].ReportID)
	assert.Equal(t, "RPT-a", entries[1].ReportID)
	assert.Equal(t, "RPT-b", entries[2].ReportID)
}

func TestSQLite_Append_NormalizesTimestampToUTC(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	loc := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2026, 3, 14, 14, 30, 0, 0, loc)
	require.NoError(t, st.Append(ctx, model.LogEntry{
		ReportID:    "RPT-1",
		Project:     "proj",
		Status:      model.RunStatusSuccess,
		GeneratedAt: local,
	}))

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].GeneratedAt.Equal(local))
	assert.Equal(t, time.UTC, entries[0].GeneratedAt.Location())
}

func TestSQLite_Stats(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Append(ctx, model.LogEntry{ReportID: "RPT-1", Project: "a", ComponentCount: 10, Status: model.RunStatusSuccess, GeneratedAt: ts}))
	require.NoError(t, st.Append(ctx, model.LogEntry{ReportID: "RPT-2", Project: "a", ComponentCount: 3, Status: model.RunStatusFailure, GeneratedAt: ts}))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReports)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 10, stats.TotalComponents)
	require.Len(t, stats.ByProject, 1)
	assert.Equal(t, model.ProjectCount{Project: "a", Reports: 2}, stats.ByProject[0])
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.Migrate(context.Background())
	require.NoError(t, err)
}
