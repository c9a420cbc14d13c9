package lifecycle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/clock"
	"github.com/rryowa/candidate_session/internal/metrics"
	"github.com/rryowa/candidate_session/internal/models"
)

const DefaultLogoutThreshold = 5 * time.Minute

type Session interface {
	StartTokenRefreshWatcher(ctx context.Context)
	StopTokenRefreshWatcher()
	IsLoggedIn(ctx context.Context) bool
	Logout(ctx context.Context)
}

type Navigator interface {
	Navigate(path string)
}

type EventNotifier interface {
	NotifySessionEvent(ctx context.Context, event models.SessionEvent)
}

// Watcher suspends token refresh while the app is in the background and
// ends the session once the app has stayed there for the threshold.
//
// The background timer is only a best effort: a suspended process may never
// see it fire. The elapsed wall time checked on resume is what decides.
type Watcher struct {
	session   Session
	nav       Navigator
	notifier  EventNotifier
	metrics   *metrics.Metrics
	clock     clock.Clock
	threshold time.Duration
	log       *zap.SugaredLogger

	mu           sync.Mutex
	backgroundAt time.Time
	logoutTimer  clock.Timer
	timerGen     uint64
}

type WatcherDeps struct {
	Session   Session
	Navigator Navigator
	Notifier  EventNotifier
	Metrics   *metrics.Metrics
	Clock     clock.Clock
	Threshold time.Duration
	Log       *zap.SugaredLogger
}

func NewWatcher(deps WatcherDeps) *Watcher {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Threshold <= 0 {
		deps.Threshold = DefaultLogoutThreshold
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}

	return &Watcher{
		session:   deps.Session,
		nav:       deps.Navigator,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		threshold: deps.Threshold,
		log:       deps.Log,
	}
}

// Start subscribes to src; the returned func unsubscribes and disarms any
// pending background timer.
func (w *Watcher) Start(ctx context.Context, src Source) func() {
	unsubscribe := src.Subscribe(func(state models.AppState) {
		w.HandleStateChange(ctx, state)
	})

	return func() {
		unsubscribe()
		w.mu.Lock()
		w.stopTimerLocked()
		w.mu.Unlock()
	}
}

func (w *Watcher) HandleStateChange(ctx context.Context, state models.AppState) {
	if state.IsActive() {
		w.OnForeground(ctx)
		return
	}
	w.OnBackground(ctx)
}

func (w *Watcher) OnBackground(ctx context.Context) {
	w.mu.Lock()
	w.backgroundAt = w.clock.Now()
	w.stopTimerLocked()
	gen := w.timerGen
	w.logoutTimer = w.clock.AfterFunc(w.threshold, func() { w.onThresholdTimer(ctx, gen) })
	w.mu.Unlock()

	w.session.StopTokenRefreshWatcher()
	w.log.Debugw("app backgrounded, refresh suspended", "threshold", w.threshold)
}

func (w *Watcher) OnForeground(ctx context.Context) {
	w.mu.Lock()
	w.stopTimerLocked()
	backgroundAt := w.backgroundAt
	w.backgroundAt = time.Time{}
	w.mu.Unlock()

	if !backgroundAt.IsZero() {
		if elapsed := w.clock.Now().Sub(backgroundAt); elapsed >= w.threshold {
			w.log.Infow("background threshold exceeded, forcing logout", "elapsed", elapsed)
			w.forceLogout(ctx, metrics.ReasonBackgroundResume)
			return
		}
	}

	if w.session.IsLoggedIn(ctx) {
		w.session.StartTokenRefreshWatcher(ctx)
	}
}

func (w *Watcher) onThresholdTimer(ctx context.Context, gen uint64) {
	w.mu.Lock()
	if gen != w.timerGen {
		w.mu.Unlock()
		return
	}
	w.logoutTimer = nil
	w.backgroundAt = time.Time{}
	w.mu.Unlock()

	w.log.Info("app stayed in background past threshold, forcing logout")
	w.forceLogout(ctx, metrics.ReasonBackgroundTimer)
}

func (w *Watcher) forceLogout(ctx context.Context, reason string) {
	wasLoggedIn := w.session.IsLoggedIn(ctx)
	w.session.Logout(ctx)
	w.nav.Navigate(models.RootRoute)

	if !wasLoggedIn {
		return
	}
	w.metrics.ForcedLogout(reason)
	if w.notifier != nil {
		w.notifier.NotifySessionEvent(ctx, models.SessionEvent{
			Type:   models.SessionEventForcedLogout,
			Reason: reason,
			At:     w.clock.Now(),
		})
	}
}

func (w *Watcher) stopTimerLocked() {
	if w.logoutTimer != nil {
		w.logoutTimer.Stop()
		w.logoutTimer = nil
	}
	w.timerGen++
}
