package queue

import (
	"sync"
	"time"

	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

// Store holds the per-tap FIFO wait queues. All operations take the
// store-wide lock; queues are small and human-paced, so correctness
// wins over per-tap sharding.
//
// The store performs no I/O and fires no events itself. Mutations
// return a HeadChange describing what the caller must announce.
type Store struct {
	mu     sync.Mutex
	queues map[string][]tapmodels.QueueEntry
}

// HeadChange describes a head-of-queue transition caused by a mutation.
// When Changed is true the caller must announce NewHeadUserID to the
// device; an empty NewHeadUserID means the queue emptied and the tap
// should be reset.
type HeadChange struct {
	Changed       bool
	NewHeadUserID string
}

// CancelResult reports what a Cancel removed. WasHead means an active
// session holder left and the caller must signal session-stop.
type CancelResult struct {
	Removed bool
	WasHead bool
	Head    HeadChange
}

// SweepEntry is the per-tap outcome of RemoveUserEverywhere.
type SweepEntry struct {
	TapID   string
	WasHead bool
	Head    HeadChange
}

// NewStore creates an empty queue store
func NewStore() *Store {
	return &Store{
		queues: make(map[string][]tapmodels.QueueEntry),
	}
}

// Enqueue appends the user to the tap's queue. A user already waiting
// on that tap is left where they are. Returns true when the user became
// the new head (the queue was empty).
func (s *Store) Enqueue(tapID, userID, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[tapID]
	for _, entry := range q {
		if entry.UserID == userID {
			return false
		}
	}

	s.queues[tapID] = append(q, tapmodels.QueueEntry{
		UserID:   userID,
		Username: username,
		TapID:    tapID,
		QueuedAt: time.Now().UTC(),
	})
	return len(q) == 0
}

// Dequeue removes and returns the head entry, or nil if the queue is
// empty or unknown.
func (s *Store) Dequeue(tapID string) (*tapmodels.QueueEntry, HeadChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dequeueLocked(tapID)
}

func (s *Store) dequeueLocked(tapID string) (*tapmodels.QueueEntry, HeadChange) {
	q := s.queues[tapID]
	if len(q) == 0 {
		return nil, HeadChange{}
	}

	head := q[0]
	s.queues[tapID] = q[1:]

	change := HeadChange{Changed: true}
	if len(q) > 1 {
		change.NewHeadUserID = q[1].UserID
	}
	return &head, change
}

// Cancel removes the user from the tap's queue. A non-head user is
// lifted out wherever they stand and no head change results. Cancelling
// the head is a dequeue: the next waiter (or nobody) becomes head and
// WasHead tells the caller to tear down the in-progress session.
func (s *Store) Cancel(tapID, userID string) CancelResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[tapID]
	if len(q) == 0 {
		return CancelResult{}
	}

	if q[0].UserID == userID {
		_, change := s.dequeueLocked(tapID)
		return CancelResult{Removed: true, WasHead: true, Head: change}
	}

	for i, entry := range q {
		if entry.UserID == userID {
			s.queues[tapID] = append(q[:i:i], q[i+1:]...)
			return CancelResult{Removed: true}
		}
	}
	return CancelResult{}
}

// IsNext reports whether the user is the current head of the tap's
// queue. Always false for an empty queue.
func (s *Store) IsNext(tapID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[tapID]
	return len(q) > 0 && q[0].UserID == userID
}

// Peek returns a copy of the head entry without removing it
func (s *Store) Peek(tapID string) *tapmodels.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[tapID]
	if len(q) == 0 {
		return nil
	}
	head := q[0]
	return &head
}

// PositionOf returns the user's 0-based index in the tap's queue, or -1
// when the user is not waiting there.
func (s *Store) PositionOf(tapID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, entry := range s.queues[tapID] {
		if entry.UserID == userID {
			return i
		}
	}
	return -1
}

// HasWaiters reports whether anyone is queued on the tap
func (s *Store) HasWaiters(tapID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[tapID]) > 0
}

// Snapshot returns a copy of the tap's queue in order; callers may
// keep or mutate it freely
func (s *Store) Snapshot(tapID string) []tapmodels.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[tapID]
	out := make([]tapmodels.QueueEntry, len(q))
	copy(out, q)
	return out
}

// RemoveUserEverywhere sweeps the user out of every tap queue, as on
// sign-out. One SweepEntry is returned per tap the user was removed
// from; the caller announces head changes and signals session-stop for
// taps where the user held the head.
func (s *Store) RemoveUserEverywhere(userID string) []SweepEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []SweepEntry
	for tapID, q := range s.queues {
		if len(q) == 0 {
			continue
		}

		if q[0].UserID == userID {
			_, change := s.dequeueLocked(tapID)
			result = append(result, SweepEntry{TapID: tapID, WasHead: true, Head: change})
			continue
		}

		for i, entry := range q {
			if entry.UserID == userID {
				s.queues[tapID] = append(q[:i:i], q[i+1:]...)
				result = append(result, SweepEntry{TapID: tapID})
				break
			}
		}
	}
	return result
}
