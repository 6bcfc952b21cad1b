package presence

import "context"

// Tracker records who is online and which rooms they are in, by name. It is
// bookkeeping for the REST surface; live delivery is the registry's job.
type Tracker interface {
	AddActiveUser(ctx context.Context, username string) error
	RemoveActiveUser(ctx context.Context, username string) error
	ActiveUsers(ctx context.Context) ([]string, error)

	AddRoomMember(ctx context.Context, roomID, username string) error
	RemoveRoomMember(ctx context.Context, roomID, username string) error
	RoomMembers(ctx context.Context, roomID string) ([]string, error)
	Rooms(ctx context.Context) ([]string, error)
}
