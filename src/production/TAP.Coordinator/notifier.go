package coordinator

import (
	"sync"

	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

// Subscriber receives queue-state notifications. Delivery is
// best-effort: a missed notification is recoverable because clients can
// always re-fetch a snapshot.
type Subscriber interface {
	// OnQueueChanged delivers the tap's new queue snapshot
	OnQueueChanged(tapID string, snapshot []tapmodels.QueueEntry)

	// OnSessionStopRequested signals that a queue change cut short an
	// in-progress session (the head user cancelled or signed out)
	OnSessionStopRequested(tapID string)
}

// Notifier fans notifications out to registered subscribers. The core
// publishes structured values here and stays ignorant of whatever
// transport the presentation layer uses.
type Notifier struct {
	mu   sync.RWMutex
	subs []Subscriber
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a subscriber for all future notifications
func (n *Notifier) Subscribe(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, s)
}

func (n *Notifier) queueChanged(tapID string, snapshot []tapmodels.QueueEntry) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, s := range n.subs {
		s.OnQueueChanged(tapID, snapshot)
	}
}

func (n *Notifier) sessionStopRequested(tapID string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, s := range n.subs {
		s.OnSessionStopRequested(tapID)
	}
}
