package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EnqueuePreservesOrder(t *testing.T) {
	s := NewStore()

	assert.True(t, s.Enqueue("T1", "alice", "Alice"))
	assert.False(t, s.Enqueue("T1", "bob", "Bob"))
	assert.False(t, s.Enqueue("T1", "carol", "Carol"))

	snapshot := s.Snapshot("T1")
	require.Len(t, snapshot, 3)
	assert.Equal(t, "alice", snapshot[0].UserID)
	assert.Equal(t, "bob", snapshot[1].UserID)
	assert.Equal(t, "carol", snapshot[2].UserID)

	assert.Equal(t, 0, s.PositionOf("T1", "alice"))
	assert.Equal(t, 1, s.PositionOf("T1", "bob"))
	assert.Equal(t, 2, s.PositionOf("T1", "carol"))
	assert.Equal(t, -1, s.PositionOf("T1", "dave"))
}

func TestStore_EnqueueIsIdempotentPerUser(t *testing.T) {
	s := NewStore()

	s.Enqueue("T1", "alice", "Alice")
	s.Enqueue("T1", "bob", "Bob")
	assert.False(t, s.Enqueue("T1", "alice", "Alice"))

	assert.Len(t, s.Snapshot("T1"), 2)
	assert.Equal(t, 0, s.PositionOf("T1", "alice"))
}

func TestStore_DequeueEmptyReturnsNothing(t *testing.T) {
	s := NewStore()

	entry, change := s.Dequeue("T1")
	assert.Nil(t, entry)
	assert.False(t, change.Changed)
}

func TestStore_DequeuePromotesNext(t *testing.T) {
	s := NewStore()
	s.Enqueue("T1", "alice", "Alice")
	s.Enqueue("T1", "bob", "Bob")

	entry, change := s.Dequeue("T1")
	require.NotNil(t, entry)
	assert.Equal(t, "alice", entry.UserID)
	assert.True(t, change.Changed)
	assert.Equal(t, "bob", change.NewHeadUserID)

	entry, change = s.Dequeue("T1")
	require.NotNil(t, entry)
	assert.Equal(t, "bob", entry.UserID)
	assert.True(t, change.Changed)
	assert.Empty(t, change.NewHeadUserID)

	assert.False(t, s.HasWaiters("T1"))
}

func TestStore_CancelNonHeadRemovesOnlyThatUser(t *testing.T) {
	s := NewStore()
	s.Enqueue("T1", "alice", "Alice")
	s.Enqueue("T1", "bob", "Bob")
	s.Enqueue("T1", "carol", "Carol")

	result := s.Cancel("T1", "bob")
	assert.True(t, result.Removed)
	assert.False(t, result.WasHead)
	assert.False(t, result.Head.Changed)

	snapshot := s.Snapshot("T1")
	require.Len(t, snapshot, 2)
	assert.Equal(t, "alice", snapshot[0].UserID)
	assert.Equal(t, "carol", snapshot[1].UserID)
}

func TestStore_CancelHeadActsLikeDequeue(t *testing.T) {
	s := NewStore()
	s.Enqueue("T1", "alice", "Alice")
	s.Enqueue("T1", "bob", "Bob")

	result := s.Cancel("T1", "alice")
	assert.True(t, result.Removed)
	assert.True(t, result.WasHead)
	assert.True(t, result.Head.Changed)
	assert.Equal(t, "bob", result.Head.NewHeadUserID)

	assert.True(t, s.IsNext("T1", "bob"))
}

func TestStore_CancelUnknownUserIsNoop(t *testing.T) {
	s := NewStore()
	s.Enqueue("T1", "alice", "Alice")

	result := s.Cancel("T1", "nobody")
	assert.False(t, result.Removed)

	result = s.Cancel("T2", "alice")
	assert.False(t, result.Removed)

	assert.Len(t, s.Snapshot("T1"), 1)
}

func TestStore_IsNext(t *testing.T) {
	s := NewStore()

	assert.False(t, s.IsNext("T1", "alice"))

	s.Enqueue("T1", "alice", "Alice")
	s.Enqueue("T1", "bob", "Bob")

	assert.True(t, s.IsNext("T1", "alice"))
	assert.False(t, s.IsNext("T1", "bob"))
}

func TestStore_PeekDoesNotRemove(t *testing.T) {
	s := NewStore()

	assert.Nil(t, s.Peek("T1"))

	s.Enqueue("T1", "alice", "Alice")
	head := s.Peek("T1")
	require.NotNil(t, head)
	assert.Equal(t, "alice", head.UserID)
	assert.Len(t, s.Snapshot("T1"), 1)
}

func TestStore_RemoveUserEverywhere(t *testing.T) {
	s := NewStore()
	// alice holds the head of A and waits behind bob in B
	s.Enqueue("A", "alice", "Alice")
	s.Enqueue("A", "bob", "Bob")
	s.Enqueue("B", "bob", "Bob")
	s.Enqueue("B", "alice", "Alice")

	sweep := s.RemoveUserEverywhere("alice")
	require.Len(t, sweep, 2)

	byTap := map[string]SweepEntry{}
	for _, e := range sweep {
		byTap[e.TapID] = e
	}

	a := byTap["A"]
	assert.True(t, a.WasHead)
	assert.True(t, a.Head.Changed)
	assert.Equal(t, "bob", a.Head.NewHeadUserID)

	b := byTap["B"]
	assert.False(t, b.WasHead)
	assert.False(t, b.Head.Changed)

	assert.Equal(t, -1, s.PositionOf("A", "alice"))
	assert.Equal(t, -1, s.PositionOf("B", "alice"))
	assert.True(t, s.IsNext("B", "bob"))
	assert.Len(t, s.Snapshot("B"), 1)
}

func TestStore_SnapshotIsDefensiveCopy(t *testing.T) {
	s := NewStore()
	s.Enqueue("T1", "alice", "Alice")

	snapshot := s.Snapshot("T1")
	snapshot[0].UserID = "mallory"

	assert.Equal(t, "alice", s.Peek("T1").UserID)
}
