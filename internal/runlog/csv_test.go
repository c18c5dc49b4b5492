package runlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autodoc/internal/model"
)

func newTestCSVStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSV(filepath.Join(t.TempDir(), "report_log.csv"))
}

func testEntry(id, project string, count int, status model.RunStatus) model.LogEntry {
	return model.LogEntry{
		ReportID:       id,
		Project:        project,
		Engineer:       "D. Okafor",
		ComponentCount: count,
		Status:         status,
		GeneratedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		OutputPath:     "generated_reports/" + id + "_" + project + ".pdf",
	}
}

func TestCSVStore_AppendWritesHeaderOnce(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, testEntry("RPT-1", "panel-a", 3, model.RunStatusSuccess)))
	require.NoError(t, st.Append(ctx, testEntry("RPT-2", "panel-b", 5, model.RunStatusSuccess)))

	data, err := os.ReadFile(st.path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "report_id,project,engineer,component_count,status,generated_at,output_path", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "RPT-1,"))
	assert.True(t, strings.HasPrefix(lines[2], "RPT-2,"))
}

func TestCSVStore_AppendAndReadAll(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	want := testEntry("RPT-20260314-093000-a1b2c3", "Substation 12 Retrofit", 42, model.RunStatusSuccess)
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

func TestCSVStore_ReadAll_MissingFile(t *testing.T) {
	st := newTestCSVStore(t)

	entries, err := st.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSVStore_ReadAll_HeaderOnly(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.Migrate(ctx))

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSVStore_ReadAll_PreservesAppendOrder(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	for i, id := range []string{"RPT-a", "RPT-b", "RPT-c"} {
		require.NoError(t, st.Append(ctx, testEntry(id, "proj", i, model.RunStatusSuccess)))
	}

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "RPT-a", entries[0].ReportID)
	assert.Equal(t, "RPT-b", entries[1].ReportID)
	assert.Equal(t, "RPT-c", entries[2].ReportID)
}

func TestCSVStore_ReadAll_SkipsBlankLines(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, testEntry("RPT-1", "proj", 1, model.RunStatusSuccess)))

	f, err := os.OpenFile(st.path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, st.Append(ctx, testEntry("RPT-2", "proj", 2, model.RunStatusSuccess)))

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "RPT-2", entries[1].ReportID)
}

func TestCSVStore_ReadAll_ToleratesMalformedTrailingRecord(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, testEntry("RPT-1", "proj", 1, model.RunStatusSuccess)))
	require.NoError(t, st.Append(ctx, testEntry("RPT-2", "proj", 2, model.RunStatusFailure)))

	// Simulate a crash mid-append: a half-written final line.
	f, err := os.OpenFile(st.path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("RPT-3,proj,D. Oka")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "RPT-2", entries[1].ReportID)
}

func TestCSVStore_ReadAll_RejectsCorruptMidFile(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, testEntry("RPT-1", "proj", 1, model.RunStatusSuccess)))

	f, err := os.OpenFile(st.path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not,a,valid,entry\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, st.Append(ctx, testEntry("RPT-2", "proj", 2, model.RunStatusSuccess)))

	_, err = st.ReadAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt record")
}

func TestCSVStore_Append_QuotesSpecialCharacters(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	entry := testEntry("RPT-1", `Panel "A", Rev 2`, 1, model.RunStatusSuccess)
	require.NoError(t, st.Append(ctx, entry))

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, `Panel "A", Rev 2`, entries[0].Project)
}

func TestCSVStore_Append_FoldsNewlines(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	entry := testEntry("RPT-1", "Panel\nRev 2", 1, model.RunStatusSuccess)
	require.NoError(t, st.Append(ctx, entry))

	data, err := os.ReadFile(st.path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Panel Rev 2", entries[0].Project)
}

func TestCSVStore_Append_NormalizesTimestampToUTC(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	loc := time.FixedZone("UTC+5", 5*60*60)
	entry := testEntry("RPT-1", "proj", 1, model.RunStatusSuccess)
	entry.GeneratedAt = time.Date(2026, 3, 14, 14, 30, 0, 0, loc)
	require.NoError(t, st.Append(ctx, entry))

	data, err := os.ReadFile(st.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2026-03-14T09:30:00Z")

	entries, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].GeneratedAt.Equal(entry.GeneratedAt))
}

func TestCSVStore_ReadAll_MapsColumnsByHeaderName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reordered.csv")
	content := "status,report_id,generated_at,project,engineer,output_path,component_count\n" +
		"success,RPT-9,2026-03-14T09:30:00Z,proj,eng,out.pdf,7\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	st := NewCSV(path)
	entries, err := st.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "RPT-9", entries[0].ReportID)
	assert.Equal(t, 7, entries[0].ComponentCount)
	assert.Equal(t, model.RunStatusSuccess, entries[0].Status)
}

func TestCSVStore_ReadAll_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.csv")
	content := "report_id,project\nRPT-1,proj\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	st := NewCSV(path)
	_, err := st.ReadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestCSVStore_Migrate_Idempotent(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx))

	data, err := os.ReadFile(st.path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 1)
}

func TestCSVStore_Stats(t *testing.T) {
	st := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, testEntry("RPT-1", "proj-a", 10, model.RunStatusSuccess)))
	require.NoError(t, st.Append(ctx, testEntry("RPT-2", "proj-a", 5, model.RunStatusSuccess)))
	require.NoError(t, st.Append(ctx, testEntry("RPT-3", "proj-b", 0, model.RunStatusFailure)))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReports)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 15, stats.TotalComponents)
}
