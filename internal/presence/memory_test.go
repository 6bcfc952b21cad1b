package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveUserTracking(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	require.NoError(t, tracker.AddActiveUser(ctx, "user1"))
	require.NoError(t, tracker.AddActiveUser(ctx, "user2"))

	users, err := tracker.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user1", "user2"}, users)

	require.NoError(t, tracker.RemoveActiveUser(ctx, "user1"))

	users, err = tracker.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user2"}, users)
}

func TestRoomMembership(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	require.NoError(t, tracker.AddRoomMember(ctx, "roomA", "user1"))
	require.NoError(t, tracker.AddRoomMember(ctx, "roomA", "user2"))

	members, err := tracker.RoomMembers(ctx, "roomA")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user1", "user2"}, members)

	rooms, err := tracker.Rooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"roomA"}, rooms)

	// Emptying a room drops it from the directory.
	require.NoError(t, tracker.RemoveRoomMember(ctx, "roomA", "user1"))
	require.NoError(t, tracker.RemoveRoomMember(ctx, "roomA", "user2"))

	rooms, err = tracker.Rooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestUnknownRoomHasNoMembers(t *testing.T) {
	tracker := NewMemoryTracker()

	members, err := tracker.RoomMembers(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, members)
}
