package diagnostics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/skillroute/pkg/router"
	"github.com/zen-systems/skillroute/pkg/skill"
)

func okResult(id string) *router.Result {
	return &router.Result{
		ID:           id,
		Mode:         router.ModeKeyword,
		OK:           true,
		Selected:     []skill.Name{skill.TaskPlanning, skill.OutputFormat},
		Notes:        "matched task_planning, output_format",
		AttemptsUsed: 1,
	}
}

func failedResult(id string) *router.Result {
	return &router.Result{
		ID:           id,
		Mode:         router.ModeModel,
		OK:           false,
		Selected:     []skill.Name{},
		Notes:        "classification failed after 3 attempt(s): output is empty",
		AttemptsUsed: 3,
		Attempts: []router.AttemptRecord{
			{Attempt: 1, Error: "output is empty"},
			{Attempt: 2, Error: "output is empty"},
			{Attempt: 3, Error: "output is empty"},
		},
		Adapter: "mock",
		Model:   "mock-1",
	}
}

func TestFileSinkWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag", "routes.jsonl")
	sink, err := NewFileSink(path, zerolog.Nop())
	require.NoError(t, err)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	sink.Record(okResult("a"))
	sink.Record(failedResult("b"))
	sink.Record(nil)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"timestamp":"2026-01-02T03:04:05Z"`)
	assert.Contains(t, lines[0], `"selected_skills":["task_planning","output_format"]`)
	assert.Contains(t, lines[1], `"ok":false`)
	assert.Contains(t, lines[1], `"selected_skills":[]`)

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.True(t, records[0].Timestamp.Equal(fixed))
	assert.Equal(t, failedResult("b"), records[1].Result)
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.jsonl")

	for _, id := range []string{"first", "second"} {
		sink, err := NewFileSink(path, zerolog.Nop())
		require.NoError(t, err)
		sink.Record(okResult(id))
		require.NoError(t, sink.Close())
	}

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].ID)
	assert.Equal(t, "second", records[1].ID)
}

func TestFileSinkConcurrentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.jsonl")
	sink, err := NewFileSink(path, zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Record(okResult("x"))
		}()
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Len(t, records, 32)
}

func TestFileSinkAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.jsonl")
	sink, err := NewFileSink(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	sink.Record(okResult("late"))
	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewFileSinkRequiresPath(t *testing.T) {
	_, err := NewFileSink("", zerolog.Nop())
	assert.Error(t, err)
}

func TestReadRecordsReportsBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"ok\":true}\n\nnot json\n"), 0644))

	_, err := ReadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":3:")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))

	sink.Record(okResult("a"))
	sink.Record(failedResult("b"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[0], `"skills":["task_planning","output_format"]`)
	assert.Contains(t, lines[1], `"level":"warn"`)
	assert.Contains(t, lines[1], `"route_id":"b"`)
}

type countingSink struct{ n int }

func (c *countingSink) Record(*router.Result) { c.n++ }

func TestMulti(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := Multi{a, nil, b}

	m.Record(okResult("a"))
	m.Record(okResult("b"))

	assert.Equal(t, 2, a.n)
	assert.Equal(t, 2, b.n)
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Result: okResult("a")},
		{Result: okResult("b")},
		{Result: failedResult("c")},
	}

	sum, err := Summarize(records)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.ByMode[router.ModeKeyword])
	assert.Equal(t, 1, sum.ByMode[router.ModeModel])
	assert.Equal(t, 2, sum.SkillCounts["task_planning"])
	assert.InDelta(t, 5.0/3.0, sum.MeanAttempts, 1e-9)

	_, err = Summarize(nil)
	assert.Error(t, err)
}
