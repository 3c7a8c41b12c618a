package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
	monitoring "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Monitoring"
	interfaces "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Repository/Interfaces"
)

// Close reasons, used for metrics and logging
const (
	CloseReasonDone      = "done"
	CloseReasonWatchdog  = "watchdog"
	CloseReasonCancelled = "cancelled"
)

// activeSession is the in-memory side of an open TapSession. lastAmount
// tracks the most recent reading; a closed session's total is that
// final reading, not a sum.
type activeSession struct {
	sessionID  string
	userID     string
	lastAmount float64
}

// Tracker owns the tap session lifecycle: it opens a session when the
// device goes active with no session open, appends one TapEvent per
// amount reading, and closes on done. At most one open session per tap;
// the tap to session table never leaves this struct.
type Tracker struct {
	mu          sync.Mutex
	active      map[string]*activeSession
	sessionRepo interfaces.SessionRepository
	userRepo    interfaces.UserRepository
	logger      *logger.Logger
	now         func() time.Time
}

func NewTracker(sessionRepo interfaces.SessionRepository, userRepo interfaces.UserRepository, log *logger.Logger) *Tracker {
	return &Tracker{
		active:      make(map[string]*activeSession),
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		logger:      log.WithComponent("session"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the tracker's clock, for tests
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// HandleStatus feeds one status reading through the state machine.
// head is the tap's current queue head, or nil when the queue is empty.
func (t *Tracker) HandleStatus(ctx context.Context, tapID, status string, head *tapmodels.QueueEntry) error {
	switch status {
	case tapmodels.StatusPouring, tapmodels.StatusStopped:
		return t.openIfIdle(ctx, tapID, head)
	case tapmodels.StatusDone:
		return t.Close(ctx, tapID, CloseReasonDone)
	default:
		// idle and anything unrecognized neither open nor close
		return nil
	}
}

func (t *Tracker) openIfIdle(ctx context.Context, tapID string, head *tapmodels.QueueEntry) error {
	t.mu.Lock()
	if _, open := t.active[tapID]; open {
		t.mu.Unlock()
		return nil
	}
	if head == nil {
		t.mu.Unlock()
		// telemetry got ahead of queue bookkeeping; benign race
		t.logger.WithTap(tapID).Warn("active status with no queue head, skipping session open")
		return nil
	}

	sess := &tapmodels.TapSession{
		SessionID: uuid.New().String(),
		TapID:     tapID,
		UserID:    head.UserID,
		StartTime: t.now(),
	}
	t.active[tapID] = &activeSession{sessionID: sess.SessionID, userID: sess.UserID}
	t.mu.Unlock()

	if err := t.sessionRepo.CreateSession(ctx, sess); err != nil {
		t.mu.Lock()
		delete(t.active, tapID)
		t.mu.Unlock()
		return err
	}

	monitoring.SessionOpened()
	t.logger.WithTap(tapID).WithField("session_id", sess.SessionID).WithField("user_id", sess.UserID).Info("session opened")
	return nil
}

// HandleAmount appends one TapEvent for the tap's open session. A
// reading with no open session is dropped: it means telemetry arrived
// before queue/session bookkeeping caught up.
func (t *Tracker) HandleAmount(ctx context.Context, tapID string, amount float64) error {
	t.mu.Lock()
	sess, open := t.active[tapID]
	if !open {
		t.mu.Unlock()
		monitoring.TelemetryDropped("orphan_amount")
		t.logger.WithTap(tapID).WithField("amount", amount).Warn("amount reading with no open session, dropping")
		return nil
	}
	sess.lastAmount = amount
	sessionID := sess.sessionID
	t.mu.Unlock()

	event := tapmodels.TapEvent{
		EventID:   uuid.New().String(),
		SessionID: sessionID,
		Timestamp: t.now(),
		Amount:    amount,
	}
	if err := t.sessionRepo.AppendEvent(ctx, event); err != nil {
		return err
	}

	monitoring.EventRecorded()
	return nil
}

// Close ends the tap's open session, if any. The accumulated amount is
// the most recent reading for the session. No open session is a no-op:
// done may arrive repeatedly or after a watchdog already advanced the
// queue.
func (t *Tracker) Close(ctx context.Context, tapID, reason string) error {
	t.mu.Lock()
	sess, open := t.active[tapID]
	if !open {
		t.mu.Unlock()
		return nil
	}
	delete(t.active, tapID)
	t.mu.Unlock()

	stop := t.now()
	update := &tapmodels.TapSession{
		SessionID:   sess.sessionID,
		TapID:       tapID,
		UserID:      sess.userID,
		StopTime:    &stop,
		TotalAmount: sess.lastAmount,
	}
	if err := t.sessionRepo.UpdateSession(ctx, update); err != nil {
		return err
	}

	monitoring.SessionClosed(reason)
	t.logger.WithTap(tapID).
		WithField("session_id", sess.sessionID).
		WithField("total_amount", sess.lastAmount).
		WithField("reason", reason).
		Info("session closed")

	// credit the pour; accounting failure must not break queue advancement
	if err := t.userRepo.RecordPour(ctx, sess.userID, sess.lastAmount); err != nil {
		t.logger.WithField("user_id", sess.userID).ErrorWithError(err, "failed to record pour")
	}
	return nil
}

// HasOpenSession reports whether the tap has an open session
func (t *Tracker) HasOpenSession(tapID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, open := t.active[tapID]
	return open
}

// OpenSessionID returns the open session's id for the tap, if any
func (t *Tracker) OpenSessionID(tapID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, open := t.active[tapID]
	if !open {
		return "", false
	}
	return sess.sessionID, true
}
