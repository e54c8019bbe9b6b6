package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level names a trace level. Levels are ordered by their position in a
// Tracer's level list, most severe first.
type Level string

// Default levels, most severe first.
const (
	Fatal   Level = "FATAL"
	Error   Level = "ERROR"
	Warning Level = "WARNING"
	Info    Level = "INFO"
	Debug   Level = "DEBUG"
)

// DefaultLevels is the level list of a Tracer created without WithLevels.
var DefaultLevels = []Level{Fatal, Error, Warning, Info, Debug}

// TimeFormat is the layout of the timestamp that starts every line.
const TimeFormat = "2006-01-02 15:04:05.000"

// ErrUnknownLevel is returned when selecting a level that is not in the
// tracer's level list.
var ErrUnknownLevel = errors.New("unknown trace level")

// Sink receives one fully formatted line per emitted entry.
type Sink func(line string)

// WriterSink returns a Sink that writes each line followed by a newline.
// Write errors are ignored.
func WriterSink(w io.Writer) Sink {
	var mu sync.Mutex
	return func(line string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.WriteString(w, line+"\n")
	}
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithLevels replaces the ordered level list. The current level is reset to
// the last level in the list unless WithLevel is also given.
func WithLevels(levels ...Level) Option {
	return func(t *Tracer) {
		t.levels = slices.Clone(levels)
		if len(levels) > 0 && !slices.Contains(levels, t.level) {
			t.level = levels[len(levels)-1]
		}
	}
}

// WithLevel sets the current level.
func WithLevel(level Level) Option {
	return func(t *Tracer) {
		t.level = level
	}
}

// WithSink replaces the output sink. The default writes to stdout.
func WithSink(sink Sink) Option {
	return func(t *Tracer) {
		t.sink = sink
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracer) {
		t.clock = clock
	}
}

// Tracer filters entries by level and hands formatted lines to a Sink.
//
// An entry is emitted when its level is at or above the current level in
// the level list; levels that are not in the list are never emitted.
//
// A Tracer is safe for concurrent use.
type Tracer struct {
	mu     sync.RWMutex
	levels []Level
	level  Level
	sink   Sink
	clock  func() time.Time
}

// New creates a Tracer at level INFO over DefaultLevels.
func New(opts ...Option) *Tracer {
	t := &Tracer{
		levels: slices.Clone(DefaultLevels),
		level:  Info,
		sink:   WriterSink(os.Stdout),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Levels returns a copy of the level list.
func (t *Tracer) Levels() []Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.levels)
}

// Level returns the current level.
func (t *Tracer) Level() Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.level
}

// SetLevel changes the current level.
func (t *Tracer) SetLevel(level Level) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !slices.Contains(t.levels, level) {
		return fmt.Errorf("%w: %s", ErrUnknownLevel, level)
	}
	t.level = level
	return nil
}

// SetSink replaces the output sink. A nil sink discards all output.
func (t *Tracer) SetSink(sink Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

// Enabled reports whether entries at level would be emitted.
func (t *Tracer) Enabled(level Level) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled(level)
}

func (t *Tracer) enabled(level Level) bool {
	idx := slices.Index(t.levels, level)
	return idx >= 0 && idx <= slices.Index(t.levels, t.level)
}

// Log emits msg at level with optional data.
func (t *Tracer) Log(level Level, msg string, data map[string]any) {
	t.logAt(time.Time{}, level, msg, data)
}

func (t *Tracer) logAt(at time.Time, level Level, msg string, data map[string]any) {
	t.mu.RLock()
	if !t.enabled(level) || t.sink == nil {
		t.mu.RUnlock()
		return
	}
	sink := t.sink
	if at.IsZero() {
		at = t.clock()
	}
	t.mu.RUnlock()

	sink(Format(at, level, msg, data))
}

// Format renders one line:
//
//	[2025-01-02 15:04:05.000]: [INFO] started (id: "a1", retries: 3)
//
// Data keys are sorted. Values are JSON encoded; values that cannot be
// encoded are rendered as quoted text.
func Format(at time.Time, level Level, msg string, data map[string]any) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(at.Format(TimeFormat))
	b.WriteString("]: [")
	b.WriteString(string(level))
	b.WriteString("] ")
	b.WriteString(msg)

	if len(data) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(encodeValue(data[k]))
	}
	b.WriteString(")")
	return b.String()
}

func encodeValue(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
