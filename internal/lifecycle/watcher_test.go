package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/candidate_session/internal/clock"
	"github.com/rryowa/candidate_session/internal/metrics"
	"github.com/rryowa/candidate_session/internal/models"
)

type fakeSession struct {
	mu       sync.Mutex
	loggedIn bool
	starts   int
	stops    int
	logouts  int
}

func (s *fakeSession) StartTokenRefreshWatcher(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
}

func (s *fakeSession) StopTokenRefreshWatcher() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func (s *fakeSession) IsLoggedIn(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

func (s *fakeSession) Logout(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	s.loggedIn = false
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) { n.paths = append(n.paths, path) }

type recordingNotifier struct {
	events []models.SessionEvent
}

func (n *recordingNotifier) NotifySessionEvent(_ context.Context, e models.SessionEvent) {
	n.events = append(n.events, e)
}

type harness struct {
	clock    *clock.Fake
	session  *fakeSession
	nav      *recordingNavigator
	notifier *recordingNotifier
	reg      *prometheus.Registry
	watcher  *Watcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock:    clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		session:  &fakeSession{loggedIn: true},
		nav:      &recordingNavigator{},
		notifier: &recordingNotifier{},
		reg:      prometheus.NewRegistry(),
	}
	h.watcher = NewWatcher(WatcherDeps{
		Session:   h.session,
		Navigator: h.nav,
		Notifier:  h.notifier,
		Metrics:   metrics.New(h.reg),
		Clock:     h.clock,
	})
	return h
}

func forcedLogouts(t *testing.T, reg *prometheus.Registry, reason string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "candidate_session_forced_logouts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "reason" && lp.GetValue() == reason {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestWatcher_ShortBackgroundKeepsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.watcher.HandleStateChange(ctx, models.AppStateBackground)
	assert.Equal(t, 1, h.session.stops)
	assert.Equal(t, 1, h.clock.Pending())

	h.clock.Advance(2 * time.Minute)
	h.watcher.HandleStateChange(ctx, models.AppStateForeground)

	assert.Zero(t, h.session.logouts)
	assert.Equal(t, 1, h.session.starts)
	assert.Zero(t, h.clock.Pending(), "background timer must be cancelled")
	assert.Empty(t, h.nav.paths)
	assert.Empty(t, h.notifier.events)
}

func TestWatcher_ResumeAfterThresholdForcesLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.watcher.OnBackground(ctx)

	// A suspended process never runs its timers; only the wall clock moves.
	h.clock.Set(h.clock.Now().Add(6 * time.Minute))
	h.watcher.OnForeground(ctx)

	assert.Equal(t, 1, h.session.logouts)
	assert.Zero(t, h.session.starts)
	assert.Equal(t, []string{models.RootRoute}, h.nav.paths)
	require.Len(t, h.notifier.events, 1)
	assert.Equal(t, models.SessionEventForcedLogout, h.notifier.events[0].Type)
	assert.Equal(t, metrics.ReasonBackgroundResume, h.notifier.events[0].Reason)
	assert.Equal(t, 1.0, forcedLogouts(t, h.reg, metrics.ReasonBackgroundResume))
}

func TestWatcher_ExactThresholdForcesLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.watcher.OnBackground(ctx)
	h.clock.Set(h.clock.Now().Add(DefaultLogoutThreshold))
	h.watcher.OnForeground(ctx)

	assert.Equal(t, 1, h.session.logouts)
}

func TestWatcher_TimerFiresWhileBackgrounded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.watcher.OnBackground(ctx)
	h.clock.Advance(DefaultLogoutThreshold)

	assert.Equal(t, 1, h.session.logouts)
	assert.Equal(t, []string{models.RootRoute}, h.nav.paths)
	assert.Equal(t, 1.0, forcedLogouts(t, h.reg, metrics.ReasonBackgroundTimer))

	// The session is already gone; resuming must not log out a second time
	// or restart the refresh watcher.
	h.watcher.OnForeground(ctx)
	assert.Equal(t, 1, h.session.logouts)
	assert.Zero(t, h.session.starts)
	assert.Len(t, h.notifier.events, 1)
}

func TestWatcher_RepeatedBackgroundKeepsSingleTimer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.watcher.OnBackground(ctx)
	h.clock.Advance(time.Minute)
	h.watcher.OnBackground(ctx)

	assert.Equal(t, 1, h.clock.Pending())

	// Four minutes after the second transition the first timer would have fired.
	h.clock.Advance(4 * time.Minute)
	assert.Zero(t, h.session.logouts)

	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.session.logouts)
}

func TestWatcher_ForegroundWhenLoggedOutDoesNotStartRefresh(t *testing.T) {
	h := newHarness(t)
	h.session.loggedIn = false

	h.watcher.OnForeground(context.Background())

	assert.Zero(t, h.session.starts)
	assert.Zero(t, h.session.logouts)
}

func TestWatcher_ForcedLogoutWithoutSessionSkipsEvent(t *testing.T) {
	h := newHarness(t)
	h.session.loggedIn = false
	ctx := context.Background()

	h.watcher.OnBackground(ctx)
	h.clock.Advance(DefaultLogoutThreshold)

	assert.Equal(t, []string{models.RootRoute}, h.nav.paths)
	assert.Empty(t, h.notifier.events)
	assert.Zero(t, forcedLogouts(t, h.reg, metrics.ReasonBackgroundTimer))
}

func TestWatcher_StartSubscribesAndStops(t *testing.T) {
	h := newHarness(t)
	events := NewEvents()

	stop := h.watcher.Start(context.Background(), events)

	events.Publish(models.AppStateBackground)
	assert.Equal(t, 1, h.session.stops)
	assert.Equal(t, 1, h.clock.Pending())

	stop()
	assert.Zero(t, h.clock.Pending())

	events.Publish(models.AppStateBackground)
	assert.Equal(t, 1, h.session.stops)
}

func TestEvents_PublishInSubscriptionOrder(t *testing.T) {
	events := NewEvents()
	var got []string

	events.Subscribe(func(s models.AppState) { got = append(got, "a:"+string(s)) })
	unsubscribe := events.Subscribe(func(s models.AppState) { got = append(got, "b:"+string(s)) })
	events.Subscribe(func(s models.AppState) { got = append(got, "c:"+string(s)) })

	events.Publish(models.AppStateBackground)
	unsubscribe()
	events.Publish(models.AppStateForeground)

	assert.Equal(t, []string{
		"a:background", "b:background", "c:background",
		"a:foreground", "c:foreground",
	}, got)
}
