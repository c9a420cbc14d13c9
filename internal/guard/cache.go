package guard

import (
	"sync"

	"github.com/rryowa/candidate_session/internal/models"
)

// ProfileCache holds the profile fetched by the last successful guard check.
// It is cleared when the session ends.
type ProfileCache struct {
	mu      sync.RWMutex
	profile *models.CandidateProfile
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{}
}

func (c *ProfileCache) Get() (*models.CandidateProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile, c.profile != nil
}

func (c *ProfileCache) Set(p *models.CandidateProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p
}

func (c *ProfileCache) Clear() {
	c.Set(nil)
}
