package controller

import (
	"sync"

	"github.com/rryowa/candidate_session/internal/models"
)

// Navigation holds the location the UI host should display. Guards and the
// lifecycle watcher move it; the host polls GET /api/navigation.
type Navigation struct {
	mu       sync.RWMutex
	location string
}

func NewNavigation() *Navigation {
	return &Navigation{location: models.RootRoute}
}

func (n *Navigation) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = path
}

func (n *Navigation) Location() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.location
}
