package viewmodel

import "sync"

// Sequencer numbers requests per slot so that only the response of the most
// recently issued request is applied. Older responses are dropped no matter
// when they arrive.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a request id for slot. Issuing an id supersedes every earlier
// id of the same slot.
func (s *Sequencer) Next(slot string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[slot]++
	return s.latest[slot]
}

// Apply runs fn if id is still the latest for slot and reports whether it ran.
func (s *Sequencer) Apply(slot string, id uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[slot] != id {
		return false
	}
	fn()
	return true
}
