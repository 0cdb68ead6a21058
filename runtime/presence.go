package runtime

import (
	"sync"

	"github.com/samber/lo"
)

// Presence maps live connections to the display name of their user.
// The transport adds an entry on connect and removes it on disconnect.
type Presence struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewPresence() *Presence {
	return &Presence{names: make(map[string]string)}
}

func (p *Presence) Set(connectionID, displayName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[connectionID] = displayName
}

// Remove returns the name the connection had, if any.
func (p *Presence) Remove(connectionID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.names[connectionID]
	delete(p.names, connectionID)
	return name, ok
}

func (p *Presence) Name(connectionID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.names[connectionID]
	return name, ok
}

// Online lists distinct display names, sorted. A user with two tabs appears once.
func (p *Presence) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sorted(lo.SliceToMap(lo.Values(p.names), func(n string) (string, struct{}) { return n, struct{}{} }))
}
