// Package telemetry records that reconciliation happened.
//
// Sinks are informed fire-and-forget. A sink that fails, or even panics,
// never affects the operation that reported to it: callers go through Notify,
// which swallows both.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danieljhkim/pluginsync/internal/fsops"
)

// EventAttemptUpdate is sent once per update attempt. Its value is "true" when
// the attempt was automatic and "false" when an operator triggered it.
const EventAttemptUpdate = "attempt_plugin_update_auto"

// EventsFile is the JSON lines file FileSink appends to.
const EventsFile = "events.jsonl"

// Event is one telemetry record.
type Event struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Value string    `json:"value"`
	Time  time.Time `json:"time"`
}

// NewEvent creates an event with a fresh ID.
func NewEvent(name, value string, at time.Time) Event {
	return Event{ID: uuid.New(), Name: name, Value: value, Time: at}
}

// Sink receives events.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Notify sends e to sink and discards any failure.
func Notify(ctx context.Context, sink Sink, log zerolog.Logger, e Event) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("event", e.Name).Interface("panic", r).Msg("telemetry sink panicked")
		}
	}()
	if err := sink.Send(ctx, e); err != nil {
		log.Warn().Str("event", e.Name).Err(err).Msg("telemetry sink failed")
	}
}

// LogSink writes events to a logger at debug level.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Send logs the event.
func (s *LogSink) Send(_ context.Context, e Event) error {
	s.log.Debug().
		Str("event_id", e.ID.String()).
		Str("event", e.Name).
		Str("value", e.Value).
		Time("at", e.Time).
		Msg("telemetry")
	return nil
}

// FileSink appends events as JSON lines under the state directory.
type FileSink struct {
	fs   fsops.FS
	path string
}

// NewFileSink creates a FileSink writing EventsFile in stateDir.
func NewFileSink(fs fsops.FS, stateDir string) *FileSink {
	return &FileSink{fs: fs, path: filepath.Join(stateDir, EventsFile)}
}

// Path returns the events file location.
func (s *FileSink) Path() string {
	return s.path
}

// Send appends the event.
func (s *FileSink) Send(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := s.fs.AppendFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Multi fans an event out to several sinks. Every sink is tried, even after
// one panics; the first error is returned.
type Multi []Sink

// Send forwards e to every sink.
func (m Multi) Send(ctx context.Context, e Event) error {
	var first error
	for _, sink := range m {
		if err := sendOne(ctx, sink, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func sendOne(ctx context.Context, sink Sink, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telemetry sink panicked: %v", r)
		}
	}()
	return sink.Send(ctx, e)
}

// Recorder keeps events in memory for tests.
type Recorder struct {
	Events []Event
	Err    error
}

// Send records e and returns the configured error.
func (r *Recorder) Send(_ context.Context, e Event) error {
	r.Events = append(r.Events, e)
	return r.Err
}
