package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAppendCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_data.csv")
	store := NewStore(path)

	err := store.Append(Record{
		Date: day("2026-03-14"), Horse: "Willow", Amount: 80, Paid: true,
		Email: "owner@example.com", Notes: "tight left shoulder",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Horse,Amount,Paid,Email,Notes", lines[0])
	assert.Equal(t, "2026-03-14,Willow,80.00,true,owner@example.com,tight left shoulder", lines[1])
}

func TestAppendCountsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_data.csv")
	store := NewStore(path)

	const n = 5
	for i := 0; i < n; i++ {
		err := store.Append(Record{Date: day("2026-01-02"), Horse: "Comet", Amount: float64(50 + i)})
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, n+1, "header plus one row per record")
	assert.Equal(t, 1, strings.Count(string(data), "Date,Horse"), "header written once")
}

func TestListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_data.csv")
	store := NewStore(path)

	recs := []Record{
		{Date: day("2026-02-01"), Horse: "Willow", Amount: 85.5, Paid: true,
			Email: "owner@example.com", Notes: "sore back,\nrecheck in two weeks"},
		{Date: day("2026-02-08"), Horse: "Comet", Amount: 60,
			Notes: `responded well to "light" work`},
	}
	for _, r := range recs {
		require.NoError(t, store.Append(r))
	}

	got, err := store.List()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, recs[0].Notes, got[0].Notes)
	assert.Equal(t, 85.5, got[0].Amount)
	assert.True(t, got[0].Paid)
	assert.Equal(t, "2026-02-08", got[1].DateString())
	assert.False(t, got[1].Paid)
	assert.Empty(t, got[1].Email)
	assert.Equal(t, recs[1].Notes, got[1].Notes)
}

func TestListMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.csv"))
	got, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppendPropagatesFailure(t *testing.T) {
	// a directory path cannot be opened as a record file
	store := NewStore(t.TempDir())
	err := store.Append(Record{Date: day("2026-01-01"), Horse: "Willow"})
	assert.Error(t, err)
}
