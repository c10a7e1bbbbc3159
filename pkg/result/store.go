// Package result retains the latest classification and serves the
// readback commands.
package result

import "sync"

// Store holds the most recent completed prediction and score vector.
// Updates are atomic from the reader's perspective: a reader never
// observes a class from one inference paired with scores from another.
type Store struct {
	lock   sync.RWMutex
	class  int
	scores []int32
}

// NewStore creates a store for the given class count. Until the first
// inference completes it reads back class 0 with all-zero scores.
func NewStore(classes int) *Store {
	return &Store{scores: make([]int32, classes)}
}

// Update replaces the stored prediction. Called once per completed
// inference.
func (s *Store) Update(class int, scores []int32) {
	snap := make([]int32, len(scores))
	copy(snap, scores)
	s.lock.Lock()
	s.class, s.scores = class, snap
	s.lock.Unlock()
}

// Snapshot reads the stored prediction and scores.
func (s *Store) Snapshot() (int, []int32) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.class, s.scores
}
