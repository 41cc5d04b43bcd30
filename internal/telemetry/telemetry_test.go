package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/pluginsync/internal/fsops"
	"github.com/danieljhkim/pluginsync/internal/logging"
)

type panicSink struct{}

func (panicSink) Send(context.Context, Event) error { panic("sink exploded") }

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := NewEvent(EventAttemptUpdate, "true", at)
	b := NewEvent(EventAttemptUpdate, "true", at)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "attempt_plugin_update_auto", a.Name)
	assert.Equal(t, at, a.Time)
}

func TestNotify_SwallowsErrorsAndPanics(t *testing.T) {
	tl := logging.NewTestLogger(t)
	e := NewEvent(EventAttemptUpdate, "false", time.Now())

	assert.NotPanics(t, func() {
		Notify(context.Background(), panicSink{}, tl.Logger, e)
	})
	assert.True(t, tl.Contains("telemetry sink panicked"))

	rec := &Recorder{Err: errors.New("offline")}
	Notify(context.Background(), rec, tl.Logger, e)
	assert.Len(t, rec.Events, 1)
	assert.True(t, tl.Contains("offline"))

	assert.NotPanics(t, func() {
		Notify(context.Background(), nil, tl.Logger, e)
	})
}

func TestFileSink_AppendsJSONLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	sink := NewFileSink(fsops.NewRealFS(), dir)
	ctx := context.Background()

	first := NewEvent(EventAttemptUpdate, "true", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	second := NewEvent(EventAttemptUpdate, "false", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, sink.Send(ctx, first))
	require.NoError(t, sink.Send(ctx, second))

	f, err := os.Open(sink.Path())
	require.NoError(t, err)
	defer f.Close()

	var got []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		got = append(got, e)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, "false", got[1].Value)
}

func TestFileSink_CancelledContext(t *testing.T) {
	sink := NewFileSink(fsops.NewRealFS(), t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sink.Send(ctx, NewEvent("x", "y", time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(sink.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestMulti_TriesEverySink(t *testing.T) {
	failing := &Recorder{Err: errors.New("first failed")}
	ok := &Recorder{}
	multi := Multi{failing, ok, NewLogSink(zerolog.Nop())}

	err := multi.Send(context.Background(), NewEvent("x", "y", time.Now()))
	assert.EqualError(t, err, "first failed")
	assert.Len(t, failing.Events, 1)
	assert.Len(t, ok.Events, 1)
}

type panickingSink struct{}

func (panickingSink) Send(context.Context, Event) error {
	panic("collector exploded")
}

func TestMulti_PanickingSinkDoesNotStopOthers(t *testing.T) {
	before := &Recorder{}
	after := &Recorder{}
	multi := Multi{before, panickingSink{}, after}

	var err error
	require.NotPanics(t, func() {
		err = multi.Send(context.Background(), NewEvent("x", "y", time.Now()))
	})
	assert.ErrorContains(t, err, "collector exploded")
	assert.Len(t, before.Events, 1)
	assert.Len(t, after.Events, 1)
}
