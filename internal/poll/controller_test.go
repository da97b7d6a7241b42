package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kettle/taskdeck/internal/api"
	"github.com/kettle/taskdeck/internal/bus"
	"github.com/kettle/taskdeck/internal/notify"
	"github.com/kettle/taskdeck/internal/record"
)

const testInterval = 10 * time.Millisecond

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

type captureSink struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSink) Notify(_ notify.Severity, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, message)
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestController_DeliversResults(t *testing.T) {
	c := NewController(Config{})
	defer c.StopAll()

	var delivered atomic.Int64
	fetch := func(ctx context.Context) (record.Collection, error) {
		return record.Collection{{"id": "t-1"}}, nil
	}
	onResult := func(rows record.Collection) {
		if len(rows) == 1 && rows[0].ID() == "t-1" {
			delivered.Add(1)
		}
	}

	c.Start(context.Background(), "tasks", fetch, onResult, Options{Interval: testInterval})
	waitFor(t, func() bool { return delivered.Load() >= 2 }, "results never delivered")
}

func TestController_AtMostOneFetchInFlight(t *testing.T) {
	c := NewController(Config{})
	defer c.StopAll()

	var inFlight, maxInFlight atomic.Int64
	release := make(chan struct{})
	var started atomic.Int64
	fetch := func(ctx context.Context) (record.Collection, error) {
		started.Add(1)
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		inFlight.Add(-1)
		return nil, nil
	}

	c.Start(context.Background(), "tasks", fetch, nil, Options{Interval: testInterval})
	// Let several ticks elapse while the first fetch is stuck. Read the
	// count before releasing: once unblocked the ticker starts fetches
	// again.
	time.Sleep(8 * testInterval)
	blockedStarts := started.Load()
	close(release)

	waitFor(t, func() bool { return inFlight.Load() == 0 }, "fetch never finished")
	if maxInFlight.Load() != 1 {
		t.Fatalf("max in-flight fetches = %d, want 1", maxInFlight.Load())
	}
	if blockedStarts != 1 {
		t.Fatalf("fetches while blocked = %d, want 1", blockedStarts)
	}
}

func TestController_TerminalStatusStopsSession(t *testing.T) {
	c := NewController(Config{})
	defer c.StopAll()

	statuses := []record.WorkStatus{record.StatusNone, record.StatusInProcessed, record.StatusSuccessful}
	var calls atomic.Int64
	fetch := func(ctx context.Context) (record.Collection, error) {
		n := calls.Add(1)
		idx := int(n) - 1
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		return record.Collection{{"id": "t-1", "status": string(statuses[idx])}}, nil
	}
	statusOf := func(rows record.Collection) record.WorkStatus {
		if len(rows) == 0 {
			return record.StatusNone
		}
		return rows[0].Status()
	}

	c.Start(context.Background(), "task-detail", fetch, nil, Options{Interval: testInterval, StatusOf: statusOf})
	waitFor(t, func() bool { return !c.Active("task-detail") }, "session survived terminal status")

	got := calls.Load()
	time.Sleep(5 * testInterval)
	if calls.Load() != got {
		t.Fatalf("fetches continued after terminal status: %d -> %d", got, calls.Load())
	}
	if got != 3 {
		t.Fatalf("fetches before stop = %d, want 3", got)
	}
}

func TestController_TrackLatestOutlivesTerminalStatus(t *testing.T) {
	c := NewController(Config{})
	defer c.StopAll()

	var calls atomic.Int64
	fetch := func(ctx context.Context) (record.Collection, error) {
		calls.Add(1)
		return record.Collection{{"id": "t-1", "status": "failed"}}, nil
	}
	statusOf := func(rows record.Collection) record.WorkStatus { return rows[0].Status() }

	c.Start(context.Background(), "latest-run", fetch, nil, Options{
		Interval:    testInterval,
		StatusOf:    statusOf,
		TrackLatest: true,
	})
	waitFor(t, func() bool { return calls.Load() >= 4 }, "track-latest session stopped on terminal status")
	if !c.Active("latest-run") {
		t.Fatal("track-latest session retired")
	}
}

func TestController_AuthExpiryStopsEverythingOnce(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe(bus.TopicAuthExpired)
	defer b.Unsubscribe(sub)

	c := NewController(Config{Bus: b})
	defer c.StopAll()

	authFetch := func(ctx context.Context) (record.Collection, error) {
		return nil, api.ErrAuthExpired
	}
	c.Start(context.Background(), "tasks", authFetch, nil, Options{Interval: testInterval})
	c.Start(context.Background(), "runs", authFetch, nil, Options{Interval: testInterval})

	waitFor(t, func() bool { return !c.Active("tasks") && !c.Active("runs") }, "sessions survived 401")

	select {
	case ev := <-sub.Ch():
		if _, ok := ev.Payload.(bus.AuthExpiredEvent); !ok {
			t.Fatalf("payload type %T", ev.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no auth expiry event")
	}
	select {
	case ev := <-sub.Ch():
		t.Fatalf("second auth expiry event: %#v", ev)
	case <-time.After(5 * testInterval):
	}

	if c.Start(context.Background(), "tasks", authFetch, nil, Options{Interval: testInterval}) {
		t.Fatal("session started while auth expired")
	}
	c.Reset()
	if !c.Start(context.Background(), "tasks", authFetch, nil, Options{Interval: testInterval}) {
		t.Fatal("session refused after reset")
	}
}

func TestController_TransientErrorKeepsCadence(t *testing.T) {
	sink := &captureSink{}
	c := NewController(Config{Sink: sink})
	defer c.StopAll()

	var calls atomic.Int64
	fetch := func(ctx context.Context) (record.Collection, error) {
		calls.Add(1)
		return nil, errors.New("connection refused")
	}

	c.Start(context.Background(), "tasks", fetch, nil, Options{Interval: testInterval})
	waitFor(t, func() bool { return calls.Load() >= 3 }, "polling stopped on transient error")
	if !c.Active("tasks") {
		t.Fatal("session retired on transient error")
	}
	waitFor(t, func() bool { return sink.count() >= 1 }, "transient error never notified")
}

func TestController_StopDiscardsLateResult(t *testing.T) {
	c := NewController(Config{})

	release := make(chan struct{})
	fetch := func(ctx context.Context) (record.Collection, error) {
		<-release
		return record.Collection{{"id": "t-1"}}, nil
	}
	var delivered atomic.Int64
	onResult := func(record.Collection) { delivered.Add(1) }

	c.Start(context.Background(), "tasks", fetch, onResult, Options{Interval: testInterval})
	time.Sleep(2 * testInterval)
	c.Stop("tasks")
	close(release)
	c.Wait()

	if delivered.Load() != 0 {
		t.Fatalf("late result delivered %d times", delivered.Load())
	}
}

func TestController_RestartReplacesSession(t *testing.T) {
	c := NewController(Config{})
	defer c.StopAll()

	var first, second atomic.Int64
	mk := func(counter *atomic.Int64) FetchFunc {
		return func(ctx context.Context) (record.Collection, error) {
			counter.Add(1)
			return nil, nil
		}
	}
	c.Start(context.Background(), "tasks", mk(&first), nil, Options{Interval: testInterval})
	waitFor(t, func() bool { return first.Load() >= 1 }, "first session never fetched")

	c.Start(context.Background(), "tasks", mk(&second), nil, Options{Interval: testInterval})
	waitFor(t, func() bool { return second.Load() >= 2 }, "second session never fetched")

	got := first.Load()
	time.Sleep(5 * testInterval)
	if first.Load() != got {
		t.Fatal("replaced session kept fetching")
	}
}
