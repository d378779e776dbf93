package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2025-01-01 00:00:00",
		"2025-01-01T00:00:00Z",
		"2025-01-01T01:00:00+01:00",
		"2025-01-01T00:00:00",
		"2025-01-01",
		" 2025-01-01 00:00:00 ",
	} {
		ts, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(ts.Time), in)
	}

	_, err := ParseTimestamp("tomorrow")
	assert.Error(t, err)
}

func TestTimestampJSON(t *testing.T) {
	t.Parallel()

	ts := NewTimestamp(time.Date(2025, 3, 4, 5, 6, 7, 999, time.UTC))
	out, err := json.Marshal(struct {
		Due Timestamp `json:"due"`
	}{ts})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2025-03-04 05:06:07"}`, string(out))

	var back struct {
		Due Timestamp `json:"due"`
	}
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, ts.Equal(back.Due.Time))
}

func TestTimestampScan(t *testing.T) {
	t.Parallel()

	var ts Timestamp
	require.NoError(t, ts.Scan(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, "2024-12-31 23:59:59", ts.String())

	require.NoError(t, ts.Scan("2024-01-02 03:04:05"))
	assert.Equal(t, "2024-01-02 03:04:05", ts.String())

	require.NoError(t, ts.Scan([]byte("2024-01-02 03:04:06")))
	assert.Equal(t, "2024-01-02 03:04:06", ts.String())

	assert.Error(t, ts.Scan(42))

	v, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 03:04:06", v)
}

func TestStatusValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusNotStarted, StatusTodo, StatusInProgress, StatusDone} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("finished").Valid())
	assert.False(t, Status("").Valid())
}
