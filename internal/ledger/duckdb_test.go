package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "state", "ledger.duckdb"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func entry(month time.Month, status Status, rows int) Entry {
	start := time.Date(2021, month, 1, 0, 0, 0, 0, time.Local)
	return Entry{
		MonthStart: start,
		MonthEnd:   start.AddDate(0, 1, -1),
		FilePath:   filepath.Join("data", start.Format("2006-01-02")+".csv"),
		Status:     status,
		Pages:      1,
		Rows:       rows,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
}

func TestRecordAndList(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, entry(time.March, StatusEmpty, 0)))
	require.NoError(t, l.Record(ctx, entry(time.January, StatusWritten, 120)))

	failed := entry(time.February, StatusFailed, 10)
	failed.Error = "reporting service failure: quota"
	require.NoError(t, l.Record(ctx, failed))

	entries, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "2021-01-01", entries[0].MonthStart.Format("2006-01-02"))
	assert.Equal(t, "2021-01-31", entries[0].MonthEnd.Format("2006-01-02"))
	assert.Equal(t, StatusWritten, entries[0].Status)
	assert.Equal(t, 120, entries[0].Rows)
	assert.Equal(t, StatusFailed, entries[1].Status)
	assert.Equal(t, "reporting service failure: quota", entries[1].Error)
	assert.Equal(t, StatusEmpty, entries[2].Status)
	assert.Empty(t, entries[2].Error)
}

func TestRecordReplacesSameMonth(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, entry(time.January, StatusFailed, 5)))
	require.NoError(t, l.Record(ctx, entry(time.January, StatusWritten, 50)))

	entries, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusWritten, entries[0].Status)
	assert.Equal(t, 50, entries[0].Rows)
}

func TestStats(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	stats, err := l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, *stats)

	require.NoError(t, l.Record(ctx, entry(time.January, StatusWritten, 100)))
	require.NoError(t, l.Record(ctx, entry(time.February, StatusWritten, 20)))
	require.NoError(t, l.Record(ctx, entry(time.March, StatusEmpty, 0)))
	require.NoError(t, l.Record(ctx, entry(time.April, StatusFailed, 3)))

	stats, err = l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Months: 4, Written: 2, Empty: 1, Failed: 1, TotalRows: 123}, *stats)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.duckdb")
	ctx := context.Background()

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, entry(time.May, StatusWritten, 1)))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, path, l.Path())
	entries, err := l.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
