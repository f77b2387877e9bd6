package client

import (
	"sync"
	"time"

	"wavewatch/world"
)

// Roster is the client-local cache of remote players, keyed by user id. The
// subscription callback is its only writer; the renderer reads a snapshot
// each frame.
type Roster struct {
	players []*world.PlayerView
	mu      sync.RWMutex
}

func NewRoster() *Roster {
	return &Roster{}
}

// Seed replaces the roster with the bulk fetch taken on world entry.
func (r *Roster) Seed(players []*world.PlayerView) {
	r.mu.Lock()
	r.players = append([]*world.PlayerView(nil), players...)
	r.mu.Unlock()
}

// Apply upserts one update event: an entry already present is replaced
// wholesale (no field merge), an unknown id is appended.
func (r *Roster) Apply(p *world.PlayerView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.players {
		if existing.UserID == p.UserID {
			r.players[i] = p
			return
		}
	}
	r.players = append(r.players, p)
}

func (r *Roster) Remove(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.players {
		if existing.UserID == userID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}

// Players returns a snapshot slice for rendering.
func (r *Roster) Players() []*world.PlayerView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*world.PlayerView(nil), r.players...)
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// PruneStale drops players whose last_seen is older than maxAge. The feed
// never evicts on its own — an uncleanly closed session keeps its avatar at
// the last position — so this is opt-in for viewers that want a timeout.
func (r *Roster) PruneStale(now time.Time, maxAge time.Duration) int {
	cutoff := now.Add(-maxAge).Unix()

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.players[:0]
	removed := 0
	for _, p := range r.players {
		if p.LastSeen < cutoff {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	r.players = kept
	return removed
}
