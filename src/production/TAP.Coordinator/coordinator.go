package coordinator

import (
	"context"
	"sync"

	config "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Config"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
	monitoring "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Monitoring"
	queue "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Queue"
	session "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Session"
	watchdog "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Watchdog"
)

// DeviceLink is the outbound half of the device connection the
// coordinator drives. Both operations are fire-and-forget.
type DeviceLink interface {
	PublishCommand(tapID, command string)
	AnnounceCurrentUser(tapID, userID string)
}

// Coordinator glues the queue store, session tracker, watchdogs and
// device link together and exposes the public queue operations.
//
// Head-cancel policy: cancelling the head user tears the session down
// here (close + session-stop notification) and tells the device "done"
// so it stops the pour; the follow-up announcement moves it on to the
// next user or resets it.
type Coordinator struct {
	queues   *queue.Store
	tracker  *session.Tracker
	link     DeviceLink
	notifier *Notifier
	logger   *logger.Logger

	amountDogs *watchdog.Set
	statusDogs *watchdog.Set

	// volatile last-known telemetry per tap, feeds the watchdogs only
	mu     sync.Mutex
	device map[string]*tapmodels.DeviceStatus
}

func New(cfg config.WatchdogConfig, queues *queue.Store, tracker *session.Tracker, link DeviceLink, notifier *Notifier, log *logger.Logger) *Coordinator {
	c := &Coordinator{
		queues:   queues,
		tracker:  tracker,
		link:     link,
		notifier: notifier,
		logger:   log.WithComponent("coordinator"),
		device:   make(map[string]*tapmodels.DeviceStatus),
	}
	c.amountDogs = watchdog.NewSet(cfg.AmountTimeout, c.onAmountWatchdog)
	c.statusDogs = watchdog.NewSet(cfg.StatusTimeout, c.onStatusWatchdog)
	return c
}

// Shutdown silences the watchdogs
func (c *Coordinator) Shutdown() {
	c.amountDogs.Shutdown()
	c.statusDogs.Shutdown()
}

// EnqueueUser adds the user to the tap's queue. Becoming head is
// announced to the device; enqueueing a user already waiting there is a
// no-op.
func (c *Coordinator) EnqueueUser(tapID, userID, username string) {
	monitoring.QueueOperation("enqueue")

	becameHead := c.queues.Enqueue(tapID, userID, username)
	if becameHead {
		c.link.AnnounceCurrentUser(tapID, userID)
	}
	c.notifyQueueChanged(tapID)
}

// DequeueUser removes and returns the head entry. An empty queue
// returns nil and fires nothing.
func (c *Coordinator) DequeueUser(tapID string) *tapmodels.QueueEntry {
	monitoring.QueueOperation("dequeue")

	entry, change := c.queues.Dequeue(tapID)
	if entry == nil {
		return nil
	}
	if change.Changed {
		c.link.AnnounceCurrentUser(tapID, change.NewHeadUserID)
	}
	c.notifyQueueChanged(tapID)
	return entry
}

// CancelUser removes the user from the tap's queue. Cancelling a waiter
// just shortens the queue; cancelling the head abandons the in-progress
// session. Unknown tap or user is a no-op, not an error.
func (c *Coordinator) CancelUser(ctx context.Context, tapID, userID string) error {
	monitoring.QueueOperation("cancel")

	result := c.queues.Cancel(tapID, userID)
	if !result.Removed {
		return nil
	}

	var err error
	if result.WasHead {
		err = c.teardownSession(ctx, tapID)
	}
	if result.Head.Changed {
		c.link.AnnounceCurrentUser(tapID, result.Head.NewHeadUserID)
	}
	c.notifyQueueChanged(tapID)
	return err
}

// RemoveUserFromAllTaps sweeps the user out of every queue, as on
// sign-out. Taps where the user held the head get the full session
// teardown; the sweep continues past persistence failures and the last
// one is returned.
func (c *Coordinator) RemoveUserFromAllTaps(ctx context.Context, userID string) error {
	monitoring.QueueOperation("signout_sweep")

	var lastErr error
	for _, removed := range c.queues.RemoveUserEverywhere(userID) {
		if removed.WasHead {
			if err := c.teardownSession(ctx, removed.TapID); err != nil {
				lastErr = err
			}
		}
		if removed.Head.Changed {
			c.link.AnnounceCurrentUser(removed.TapID, removed.Head.NewHeadUserID)
		}
		c.notifyQueueChanged(removed.TapID)
	}
	return lastErr
}

// teardownSession ends the head user's in-progress session: watchdogs
// are disarmed, the session is closed as cancelled, the device is told
// to stop, and the presentation layer gets the stop signal.
func (c *Coordinator) teardownSession(ctx context.Context, tapID string) error {
	c.amountDogs.Cancel(tapID)
	c.statusDogs.Cancel(tapID)

	err := c.tracker.Close(ctx, tapID, session.CloseReasonCancelled)
	c.link.PublishCommand(tapID, tapmodels.CommandDone)
	c.notifier.sessionStopRequested(tapID)
	return err
}

// IsUserNext reports whether the user is the tap's current head
func (c *Coordinator) IsUserNext(tapID, userID string) bool {
	return c.queues.IsNext(tapID, userID)
}

// GetUserPosition returns the user's 0-based queue position, -1 if absent
func (c *Coordinator) GetUserPosition(tapID, userID string) int {
	return c.queues.PositionOf(tapID, userID)
}

// GetQueueSnapshot returns the tap's queue in order
func (c *Coordinator) GetQueueSnapshot(tapID string) []tapmodels.QueueEntry {
	return c.queues.Snapshot(tapID)
}

// Subscribe registers a notification subscriber
func (c *Coordinator) Subscribe(s Subscriber) {
	c.notifier.Subscribe(s)
}

// HandleAmount consumes one decoded amount reading from the device
// link. Repository failures are logged and absorbed here so the
// telemetry stream keeps flowing.
func (c *Coordinator) HandleAmount(tapID string, amount float64) {
	if err := c.tracker.HandleAmount(context.Background(), tapID, amount); err != nil {
		c.logger.WithTap(tapID).ErrorWithError(err, "failed to record amount reading")
	}

	c.mu.Lock()
	state := c.deviceState(tapID)
	changed := state.LastAmount != amount
	state.LastAmount = amount
	c.mu.Unlock()

	// an unchanged reading does not restart the dog; a pour that stops
	// making progress must eventually trip it
	if changed {
		c.amountDogs.Kick(tapID)
	}
}

// HandleStatus consumes one decoded status reading from the device link
func (c *Coordinator) HandleStatus(tapID string, status string) {
	head := c.queues.Peek(tapID)
	if err := c.tracker.HandleStatus(context.Background(), tapID, status, head); err != nil {
		c.logger.WithTap(tapID).WithField("status", status).ErrorWithError(err, "failed to apply status")
	}

	c.mu.Lock()
	c.deviceState(tapID).LastStatus = status
	c.mu.Unlock()

	c.statusDogs.Kick(tapID)
}

// deviceState returns the tap's telemetry state; callers hold c.mu
func (c *Coordinator) deviceState(tapID string) *tapmodels.DeviceStatus {
	state, ok := c.device[tapID]
	if !ok {
		state = &tapmodels.DeviceStatus{}
		c.device[tapID] = state
	}
	return state
}

// onAmountWatchdog runs when no new amount value arrived for a tap
// within the timeout. A stalled pour that the device reported as
// stopped, with liquid actually poured, is declared finished.
func (c *Coordinator) onAmountWatchdog(tapID string) {
	c.mu.Lock()
	state := c.deviceState(tapID)
	stalled := state.LastStatus == tapmodels.StatusStopped && state.LastAmount > 0
	c.mu.Unlock()

	if !stalled {
		return
	}

	monitoring.WatchdogFired("amount")
	c.logger.WithTap(tapID).Warn("amount telemetry stalled, forcing session completion")

	if err := c.tracker.Close(context.Background(), tapID, session.CloseReasonWatchdog); err != nil {
		c.logger.WithTap(tapID).ErrorWithError(err, "failed to close stalled session")
	}
	c.link.PublishCommand(tapID, tapmodels.CommandDone)
	c.DequeueUser(tapID)
}

// onStatusWatchdog runs when the status stream went quiet. A tap stuck
// on done is pushed back to idle even if the queue-advance notification
// was dropped somewhere.
func (c *Coordinator) onStatusWatchdog(tapID string) {
	c.mu.Lock()
	stuck := c.deviceState(tapID).LastStatus == tapmodels.StatusDone
	c.mu.Unlock()

	if !stuck {
		return
	}

	monitoring.WatchdogFired("status")
	c.logger.WithTap(tapID).Warn("tap stuck on done, forcing queue advance")

	c.DequeueUser(tapID)
	c.link.PublishCommand(tapID, tapmodels.CommandReset)
}

func (c *Coordinator) notifyQueueChanged(tapID string) {
	snapshot := c.queues.Snapshot(tapID)
	monitoring.SetQueueLength(tapID, len(snapshot))
	c.notifier.queueChanged(tapID, snapshot)
}
