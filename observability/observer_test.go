package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/accordo-ai/accordo/observability"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recordingObserver) OnEvent(_ context.Context, event observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestLevel_SlogLevel(t *testing.T) {
	cases := []struct {
		level observability.Level
		want  slog.Level
	}{
		{observability.LevelVerbose, slog.LevelDebug},
		{observability.LevelInfo, slog.LevelInfo},
		{observability.LevelWarning, slog.LevelWarn},
		{observability.LevelError, slog.LevelError},
	}

	for _, tc := range cases {
		if got := tc.level.SlogLevel(); got != tc.want {
			t.Errorf("level %d mapped to %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestSlogObserver_EmitsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	obs := observability.NewSlogObserver(logger)

	obs.OnEvent(context.Background(), observability.Event{
		Type:      "engine.turn.start",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "engine",
		Data:      map[string]any{"deal_id": "d-1", "round": 3},
	})

	out := buf.String()
	for _, want := range []string{"engine.turn.start", "deal_id=d-1", "round=3", "source=engine"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestSlogObserver_DropsBelowFloor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserverAt(logger, observability.LevelInfo)

	obs.OnEvent(context.Background(), observability.Event{
		Type:  "engine.turn.start",
		Level: observability.LevelVerbose,
	})
	if buf.Len() != 0 {
		t.Errorf("verbose event below the floor leaked: %s", buf.String())
	}

	obs.OnEvent(context.Background(), observability.Event{
		Type:  "engine.decision",
		Level: observability.LevelInfo,
	})
	if !strings.Contains(buf.String(), "engine.decision") {
		t.Errorf("event at the floor must be emitted, got: %s", buf.String())
	}
}

func TestMultiObserver_FansOut(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	multi := observability.NewMultiObserver(a, nil, b)

	multi.OnEvent(context.Background(), observability.Event{Type: "engine.decision"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("got %d and %d events, want 1 and 1", len(a.events), len(b.events))
	}
}

func TestMultiObserver_FlattensNesting(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	inner := observability.NewMultiObserver(a, b)
	outer := observability.NewMultiObserver(inner)

	outer.OnEvent(context.Background(), observability.Event{Type: "engine.terminal"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("nested observers missed the event: %d and %d", len(a.events), len(b.events))
	}
}

func TestRegistry(t *testing.T) {
	if _, err := observability.GetObserver("noop"); err != nil {
		t.Errorf("noop observer should be pre-registered: %v", err)
	}
	if _, err := observability.GetObserver("slog"); err != nil {
		t.Errorf("slog observer should be pre-registered: %v", err)
	}
	if obs, err := observability.GetObserver(""); err != nil {
		t.Errorf("empty name should resolve to noop: %v", err)
	} else if _, ok := obs.(observability.NoOpObserver); !ok {
		t.Errorf("empty name resolved to %T, want NoOpObserver", obs)
	}

	if _, err := observability.GetObserver("missing"); err == nil {
		t.Error("expected error for unknown observer name")
	} else if !strings.Contains(err.Error(), "noop") {
		t.Errorf("error should list registered names: %v", err)
	}

	rec := &recordingObserver{}
	observability.RegisterObserver("recording", rec)
	got, err := observability.GetObserver("recording")
	if err != nil {
		t.Fatalf("GetObserver failed after register: %v", err)
	}
	if got != observability.Observer(rec) {
		t.Error("registry returned a different observer")
	}
}
