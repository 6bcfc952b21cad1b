package presence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	activeUsersKey = "active_users"
	allRoomsKey    = "all_rooms"
)

// RedisTracker keeps presence in Redis sets: active_users, all_rooms, and
// one room:<id> set per room.
type RedisTracker struct {
	client *redis.Client
}

func NewRedisTracker(ctx context.Context, redisURL string) (*RedisTracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTracker{client: client}, nil
}

// Client exposes the underlying connection so the history cache can share it.
func (t *RedisTracker) Client() *redis.Client { return t.client }

func (t *RedisTracker) AddActiveUser(ctx context.Context, username string) error {
	return t.client.SAdd(ctx, activeUsersKey, username).Err()
}

func (t *RedisTracker) RemoveActiveUser(ctx context.Context, username string) error {
	return t.client.SRem(ctx, activeUsersKey, username).Err()
}

func (t *RedisTracker) ActiveUsers(ctx context.Context) ([]string, error) {
	return t.client.SMembers(ctx, activeUsersKey).Result()
}

func (t *RedisTracker) AddRoomMember(ctx context.Context, roomID, username string) error {
	if err := t.client.SAdd(ctx, roomKey(roomID), username).Err(); err != nil {
		return err
	}
	return t.client.SAdd(ctx, allRoomsKey, roomID).Err()
}

func (t *RedisTracker) RemoveRoomMember(ctx context.Context, roomID, username string) error {
	key := roomKey(roomID)
	if err := t.client.SRem(ctx, key, username).Err(); err != nil {
		return err
	}
	// Drop empty rooms from the directory.
	n, err := t.client.SCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return t.client.SRem(ctx, allRoomsKey, roomID).Err()
	}
	return nil
}

func (t *RedisTracker) RoomMembers(ctx context.Context, roomID string) ([]string, error) {
	return t.client.SMembers(ctx, roomKey(roomID)).Result()
}

func (t *RedisTracker) Rooms(ctx context.Context) ([]string, error) {
	return t.client.SMembers(ctx, allRoomsKey).Result()
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}

func roomKey(roomID string) string {
	return "room:" + roomID
}
