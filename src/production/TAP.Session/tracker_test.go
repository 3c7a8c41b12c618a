package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*tapmodels.TapSession
	events    []tapmodels.TapEvent
	createErr error
	appendErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*tapmodels.TapSession)}
}

func (f *fakeSessionRepo) CreateSession(_ context.Context, s *tapmodels.TapSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copied := *s
	f.sessions[s.SessionID] = &copied
	return nil
}

func (f *fakeSessionRepo) UpdateSession(_ context.Context, s *tapmodels.TapSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.SessionID]
	if !ok {
		return errors.New("session not found")
	}
	stored.StopTime = s.StopTime
	stored.TotalAmount = s.TotalAmount
	return nil
}

func (f *fakeSessionRepo) FindSession(_ context.Context, id string) (*tapmodels.TapSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) AppendEvent(_ context.Context, e tapmodels.TapEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeSessionRepo) ListEventsBySession(_ context.Context, id string) ([]tapmodels.TapEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tapmodels.TapEvent
	for _, e := range f.events {
		if e.SessionID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListSessionsByUser(_ context.Context, userID string) ([]tapmodels.TapSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tapmodels.TapSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	pours map[string]float64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{pours: make(map[string]float64)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *tapmodels.User) (*tapmodels.User, error) {
	return u, nil
}
func (f *fakeUserRepo) GetByID(_ context.Context, _ string) (*tapmodels.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByUsername(_ context.Context, _ string) (*tapmodels.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetAll(_ context.Context) ([]*tapmodels.User, error) { return nil, nil }
func (f *fakeUserRepo) RecordPour(_ context.Context, userID string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pours[userID] += amount
	return nil
}
func (f *fakeUserRepo) DeductCredit(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func head(userID string) *tapmodels.QueueEntry {
	return &tapmodels.QueueEntry{UserID: userID, Username: userID, TapID: "T1"}
}

func newTestTracker() (*Tracker, *fakeSessionRepo, *fakeUserRepo) {
	repo := newFakeSessionRepo()
	users := newFakeUserRepo()
	return NewTracker(repo, users, logger.NewNop()), repo, users
}

func TestTracker_PourScenario(t *testing.T) {
	tracker, repo, users := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.HandleStatus(ctx, "T1", tapmodels.StatusPouring, head("alice")))
	require.True(t, tracker.HasOpenSession("T1"))

	sessionID, ok := tracker.OpenSessionID("T1")
	require.True(t, ok)

	for _, amount := range []float64{50, 120, 200} {
		require.NoError(t, tracker.HandleAmount(ctx, "T1", amount))
	}

	require.NoError(t, tracker.HandleStatus(ctx, "T1", tapmodels.StatusDone, head("alice")))
	assert.False(t, tracker.HasOpenSession("T1"))

	sess, err := repo.FindSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "alice", sess.UserID)
	require.NotNil(t, sess.StopTime)

	// final reading, not a sum
	assert.Equal(t, 200.0, sess.TotalAmount)

	events, err := repo.ListEventsBySession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, sess.TotalAmount, events[len(events)-1].Amount)

	assert.Equal(t, 200.0, users.pours["alice"])
}

func TestTracker_StoppedAlsoOpensSession(t *testing.T) {
	tracker, _, _ := newTestTracker()

	require.NoError(t, tracker.HandleStatus(context.Background(), "T1", tapmodels.StatusStopped, head("alice")))
	assert.True(t, tracker.HasOpenSession("T1"))
}

func TestTracker_ActiveStatusDoesNotReopen(t *testing.T) {
	tracker, _, _ := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.HandleStatus(ctx, "T1", tapmodels.StatusPouring, head("alice")))
	first, _ := tracker.OpenSessionID("T1")

	// repeated active statuses keep the same session, even with a new head
	require.NoError(t, tracker.HandleStatus(ctx, "T1", tapmodels.StatusStopped, head("bob")))
	second, _ := tracker.OpenSessionID("T1")
	assert.Equal(t, first, second)
}

func TestTracker_NoHeadIsConsistencyFaultNotError(t *testing.T) {
	tracker, repo, _ := newTestTracker()

	require.NoError(t, tracker.HandleStatus(context.Background(), "T1", tapmodels.StatusPouring, nil))
	assert.False(t, tracker.HasOpenSession("T1"))
	assert.Empty(t, repo.sessions)
}

func TestTracker_OrphanAmountIsDropped(t *testing.T) {
	tracker, repo, _ := newTestTracker()

	require.NoError(t, tracker.HandleAmount(context.Background(), "T1", 120))
	assert.Empty(t, repo.events)
}

func TestTracker_CloseWithoutSessionIsNoop(t *testing.T) {
	tracker, _, _ := newTestTracker()

	require.NoError(t, tracker.HandleStatus(context.Background(), "T1", tapmodels.StatusDone, nil))
	require.NoError(t, tracker.Close(context.Background(), "T1", CloseReasonWatchdog))
}

func TestTracker_CloseWithNoEventsTotalsZero(t *testing.T) {
	tracker, repo, _ := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.HandleStatus(ctx, "T1", tapmodels.StatusPouring, head("alice")))
	sessionID, _ := tracker.OpenSessionID("T1")
	require.NoError(t, tracker.Close(ctx, "T1", CloseReasonCancelled))

	sess, err := repo.FindSession(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, sess.StopTime)
	assert.Zero(t, sess.TotalAmount)
}

func TestTracker_CreateFailureLeavesTapIdle(t *testing.T) {
	tracker, repo, _ := newTestTracker()
	repo.createErr = errors.New("db down")

	err := tracker.HandleStatus(context.Background(), "T1", tapmodels.StatusPouring, head("alice"))
	assert.Error(t, err)
	assert.False(t, tracker.HasOpenSession("T1"))

	// next status can open again once the store recovers
	repo.createErr = nil
	require.NoError(t, tracker.HandleStatus(context.Background(), "T1", tapmodels.StatusPouring, head("alice")))
	assert.True(t, tracker.HasOpenSession("T1"))
}

func TestTracker_ClockIsInjectable(t *testing.T) {
	tracker, repo, _ := newTestTracker()
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	tracker.SetClock(func() time.Time { return fixed })

	ctx := context.Background()
	require.NoError(t, tracker.HandleStatus(ctx, "T1", tapmodels.StatusPouring, head("alice")))
	sessionID, _ := tracker.OpenSessionID("T1")
	require.NoError(t, tracker.HandleStatus(ctx, "T1", tapmodels.StatusDone, head("alice")))

	sess, err := repo.FindSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, fixed, sess.StartTime)
	require.NotNil(t, sess.StopTime)
	assert.Equal(t, fixed, *sess.StopTime)
}
