package dispatch

import "sync"

// sequencer numbers requests per anchor so that a response can be recognized
// as older than one already reflected at the same anchor.
type sequencer struct {
	mu       sync.Mutex
	issued   map[string]uint64
	accepted map[string]uint64
}

func newSequencer() *sequencer {
	return &sequencer{issued: map[string]uint64{}, accepted: map[string]uint64{}}
}

func (s *sequencer) issue(anchorID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[anchorID]++
	return s.issued[anchorID]
}

// accept reports whether ticket is newer than every ticket accepted so far
// for anchorID, recording it when it is.
func (s *sequencer) accept(anchorID string, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket <= s.accepted[anchorID] {
		return false
	}
	s.accepted[anchorID] = ticket
	return true
}
