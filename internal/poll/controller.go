// Package poll runs the periodic refresh sessions that keep each view
// current. One session per view, one request in flight per session,
// and a stop policy that ends single-resource sessions once the
// resource reaches a terminal status.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kettle/taskdeck/internal/api"
	"github.com/kettle/taskdeck/internal/bus"
	"github.com/kettle/taskdeck/internal/notify"
	"github.com/kettle/taskdeck/internal/otel"
	"github.com/kettle/taskdeck/internal/record"
	"github.com/kettle/taskdeck/internal/shared"
)

// FetchFunc retrieves the current rows for a session.
type FetchFunc func(ctx context.Context) (record.Collection, error)

// ResultFunc receives each successful fetch. It runs on the session
// goroutine; heavy work belongs elsewhere.
type ResultFunc func(rows record.Collection)

// Options configures one polling session.
type Options struct {
	// Interval between fetches. Required.
	Interval time.Duration

	// StatusOf extracts the tracked status from a fetch result. When
	// set, the session stops itself after delivering a result whose
	// status is terminal. Nil means poll until stopped.
	StatusOf func(rows record.Collection) record.WorkStatus

	// TrackLatest keeps the session alive across terminal statuses, for
	// views that follow whatever run is most recent.
	TrackLatest bool
}

// Config holds the controller's dependencies.
type Config struct {
	Logger  *slog.Logger
	Bus     *bus.Bus
	Sink    notify.Sink
	Metrics *otel.Metrics
}

// Controller owns all polling sessions. A 401 on any session stops
// every session and announces auth expiry exactly once.
type Controller struct {
	logger  *slog.Logger
	bus     *bus.Bus
	sink    notify.Sink
	metrics *otel.Metrics

	mu          sync.Mutex
	sessions    map[record.ViewIdentity]*session
	authExpired bool

	wg sync.WaitGroup
}

type session struct {
	viewID record.ViewIdentity
	cancel context.CancelFunc

	mu       sync.Mutex
	inFlight bool
	active   bool
}

func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = notify.Discard{}
	}
	return &Controller{
		logger:   logger,
		bus:      cfg.Bus,
		sink:     sink,
		metrics:  cfg.Metrics,
		sessions: make(map[record.ViewIdentity]*session),
	}
}

// Start begins a polling session for a view. Starting a view that is
// already polling restarts its session with the new options. After
// auth expiry no new session starts until Reset.
func (c *Controller) Start(ctx context.Context, viewID record.ViewIdentity, fetch FetchFunc, onResult ResultFunc, opts Options) bool {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}

	c.mu.Lock()
	if c.authExpired {
		c.mu.Unlock()
		return false
	}
	if prev, ok := c.sessions[viewID]; ok {
		prev.stop()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &session{viewID: viewID, cancel: cancel, active: true}
	c.sessions[viewID] = s
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SessionsActive.Add(ctx, 1)
	}
	c.wg.Add(1)
	go c.loop(ctx, s, fetch, onResult, opts)
	c.logger.Info("poll session started", "view_id", string(viewID), "interval", opts.Interval)
	return true
}

// Stop ends one view's session. Safe to call for a view that is not
// polling.
func (c *Controller) Stop(viewID record.ViewIdentity) {
	c.mu.Lock()
	s, ok := c.sessions[viewID]
	if ok {
		delete(c.sessions, viewID)
	}
	c.mu.Unlock()
	if ok {
		s.stop()
		c.logger.Info("poll session stopped", "view_id", string(viewID))
	}
}

// StopAll ends every session.
func (c *Controller) StopAll() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[record.ViewIdentity]*session)
	c.mu.Unlock()
	for _, s := range sessions {
		s.stop()
	}
}

// Reset clears the auth-expired latch after a fresh login.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.authExpired = false
	c.mu.Unlock()
}

// Active reports whether a view currently has a session.
func (c *Controller) Active(viewID record.ViewIdentity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[viewID]
	return ok
}

// Wait blocks until every session goroutine has exited.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) loop(ctx context.Context, s *session, fetch FetchFunc, onResult ResultFunc, opts Options) {
	defer c.wg.Done()
	defer func() {
		if c.metrics != nil {
			c.metrics.SessionsActive.Add(context.WithoutCancel(ctx), -1)
		}
	}()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	// Fetch immediately on start, then on each tick.
	c.tick(ctx, s, fetch, onResult, opts)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx, s, fetch, onResult, opts)
		}
	}
}

// tick issues one fetch unless the previous one is still running.
func (c *Controller) tick(ctx context.Context, s *session, fetch FetchFunc, onResult ResultFunc, opts Options) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		if c.metrics != nil {
			c.metrics.PollSkipped.Add(ctx, 1)
		}
		c.logger.Debug("poll tick skipped, fetch in flight", "view_id", string(s.viewID))
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	if c.metrics != nil {
		c.metrics.PollTicks.Add(ctx, 1)
	}

	ctx = shared.WithTraceID(ctx, shared.NewTraceID())
	ctx = shared.WithViewID(ctx, string(s.viewID))
	rows, err := fetch(ctx)

	s.mu.Lock()
	s.inFlight = false
	stale := !s.active
	s.mu.Unlock()
	if stale {
		// Session was stopped while the request was out; the result
		// belongs to nobody.
		return
	}

	if err != nil {
		c.handleFetchError(ctx, s, err)
		return
	}

	if onResult != nil {
		onResult(rows)
	}

	if opts.StatusOf != nil && !opts.TrackLatest {
		if st := opts.StatusOf(rows); st.IsTerminal() {
			c.logger.Info("poll session reached terminal status",
				"view_id", string(s.viewID), "status", string(st))
			c.retire(s)
		}
	}
}

func (c *Controller) handleFetchError(ctx context.Context, s *session, err error) {
	if errors.Is(err, api.ErrAuthExpired) {
		c.handleAuthExpired(ctx, s)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	// Transient trouble: tell the user, keep the cadence. The next
	// tick is the retry.
	if c.metrics != nil {
		c.metrics.PollErrors.Add(ctx, 1)
	}
	c.logger.Warn("poll fetch failed", "view_id", string(s.viewID), "error", err)
	c.sink.Notify(notify.SeverityError, "refresh failed: "+err.Error())
}

func (c *Controller) handleAuthExpired(ctx context.Context, s *session) {
	c.mu.Lock()
	first := !c.authExpired
	c.authExpired = true
	c.mu.Unlock()

	c.StopAll()
	if !first {
		return
	}
	if c.metrics != nil {
		c.metrics.AuthExpiries.Add(ctx, 1)
	}
	c.logger.Warn("authentication expired, stopping all sessions", "view_id", string(s.viewID))
	if c.bus != nil {
		c.bus.Publish(bus.TopicAuthExpired, bus.AuthExpiredEvent{})
	}
}

// retire removes one specific session, leaving any replacement that
// was started for the same view untouched.
func (c *Controller) retire(s *session) {
	c.mu.Lock()
	if cur, ok := c.sessions[s.viewID]; ok && cur == s {
		delete(c.sessions, s.viewID)
	}
	c.mu.Unlock()
	s.stop()
}

func (s *session) stop() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	s.cancel()
}
