package lifecycle

import (
	"sync"

	"github.com/rryowa/candidate_session/internal/models"
)

// Source delivers foreground/background transitions from the host platform.
type Source interface {
	Subscribe(fn func(models.AppState)) (unsubscribe func())
}

// Events is an in-process Source. Publish calls listeners synchronously in
// subscription order, so transitions are observed serially.
type Events struct {
	mu        sync.Mutex
	publishMu sync.Mutex
	nextID    int
	listeners map[int]func(models.AppState)
	order     []int
}

func NewEvents() *Events {
	return &Events{listeners: make(map[int]func(models.AppState))}
}

func (e *Events) Subscribe(fn func(models.AppState)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.order = append(e.order, id)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *Events) Publish(state models.AppState) {
	e.publishMu.Lock()
	defer e.publishMu.Unlock()

	e.mu.Lock()
	fns := make([]func(models.AppState), 0, len(e.listeners))
	for _, id := range e.order {
		if fn, ok := e.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
