package diagnostics

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zen-systems/skillroute/pkg/router"
)

// Record is one routing call as written to a diagnostics file.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	*router.Result
}

// FileSink appends one JSON line per routing call.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	now    func() time.Time
	logger zerolog.Logger
}

// NewFileSink opens path for appending, creating parent directories.
func NewFileSink(path string, logger zerolog.Logger) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("diagnostics path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &FileSink{
		file:   f,
		path:   path,
		now:    time.Now,
		logger: logger.With().Str("component", "diagnostics").Logger(),
	}, nil
}

// Path returns the file being written.
func (s *FileSink) Path() string {
	return s.path
}

// Record writes res. Write failures are logged, never returned.
func (s *FileSink) Record(res *router.Result) {
	if res == nil {
		return
	}
	data, err := json.Marshal(Record{Timestamp: s.now().UTC(), Result: res})
	if err != nil {
		s.logger.Warn().Err(err).Str("route_id", res.ID).Msg("encode diagnostic record")
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	if _, err := s.file.Write(data); err != nil {
		s.logger.Warn().Err(err).Str("route_id", res.ID).Msg("write diagnostic record")
	}
}

// Close closes the underlying file. Later records are dropped.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// LogSink writes each record as a structured log line.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink that logs at info level, or warn for failures.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "diagnostics").Logger()}
}

// Record logs res.
func (s *LogSink) Record(res *router.Result) {
	if res == nil {
		return
	}
	event := s.logger.Info()
	if !res.OK {
		event = s.logger.Warn()
	}
	event.Str("route_id", res.ID).
		Str("mode", string(res.Mode)).
		Bool("ok", res.OK).
		Strs("skills", res.SelectedStrings()).
		Float64("confidence", res.Confidence).
		Int("attempts", res.AttemptsUsed).
		Str("notes", res.Notes).
		Int64("duration_ms", res.DurationMillis).
		Msg("route")
}

// Multi fans a record out to every non-nil sink.
type Multi []router.Sink

// Record forwards res to each sink in order.
func (m Multi) Record(res *router.Result) {
	for _, s := range m {
		if s != nil {
			s.Record(res)
		}
	}
}

// ReadRecords loads every record from a diagnostics file.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		rec := Record{Result: &router.Result{}}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Summary aggregates a set of records.
type Summary struct {
	Total        int
	Failed       int
	ByMode       map[router.Mode]int
	SkillCounts  map[string]int
	MeanAttempts float64
}

// Summarize aggregates records.
func Summarize(records []Record) (Summary, error) {
	sum := Summary{
		ByMode:      make(map[router.Mode]int),
		SkillCounts: make(map[string]int),
	}
	if len(records) == 0 {
		return sum, errors.New("no records")
	}
	attempts := 0
	for _, rec := range records {
		if rec.Result == nil {
			continue
		}
		sum.Total++
		if !rec.OK {
			sum.Failed++
		}
		sum.ByMode[rec.Mode]++
		for _, name := range rec.Selected {
			sum.SkillCounts[string(name)]++
		}
		attempts += rec.AttemptsUsed
	}
	if sum.Total > 0 {
		sum.MeanAttempts = float64(attempts) / float64(sum.Total)
	}
	return sum, nil
}
