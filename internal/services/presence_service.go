package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"collab-service/internal/database"

	"github.com/redis/go-redis/v9"
)

// PresenceService mirrors realtime online/offline transitions into Redis
// and backs rate limiting and hot query caching. It satisfies
// realtime.PresenceNotifier; the router invokes it off the event loop, so
// failures here are logged and never propagate back into fan-out.
type PresenceService struct {
	client *database.RedisClient
}

func NewPresenceService(client *database.RedisClient) *PresenceService {
	return &PresenceService{client: client}
}

// =============================================================================
// User Status Management
// =============================================================================

func (s *PresenceService) UserOnline(ctx context.Context, username, workspaceRoom string) {
	pipe := s.client.GetClient().Pipeline()

	pipe.SAdd(ctx, fmt.Sprintf("workspace:%s:online", workspaceRoom), username)
	pipe.HSet(ctx, fmt.Sprintf("presence:%s", username), map[string]interface{}{
		"status":     "online",
		"workspace":  workspaceRoom,
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("presence:%s", username), 5*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user online", "username", username, "workspaceRoom", workspaceRoom, "error", err)
		return
	}

	slog.Debug("User set to online", "username", username, "workspaceRoom", workspaceRoom)
}

func (s *PresenceService) UserOffline(ctx context.Context, username, workspaceRoom string) {
	pipe := s.client.GetClient().Pipeline()

	pipe.SRem(ctx, fmt.Sprintf("workspace:%s:online", workspaceRoom), username)
	pipe.HSet(ctx, fmt.Sprintf("presence:%s", username), map[string]interface{}{
		"status":     "offline",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("presence:%s", username), 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user offline", "username", username, "workspaceRoom", workspaceRoom, "error", err)
		return
	}

	slog.Debug("User set to offline", "username", username, "workspaceRoom", workspaceRoom)
}

func (s *PresenceService) OnlineUsers(ctx context.Context, workspaceRoom string) ([]string, error) {
	return s.client.GetClient().SMembers(ctx, fmt.Sprintf("workspace:%s:online", workspaceRoom)).Result()
}

func (s *PresenceService) IsUserOnline(ctx context.Context, workspaceRoom, username string) (bool, error) {
	return s.client.GetClient().SIsMember(ctx, fmt.Sprintf("workspace:%s:online", workspaceRoom), username).Result()
}

// =============================================================================
// Rate Limiting
// =============================================================================

// CheckRateLimit enforces a sliding-window limit keyed by the caller.
func (s *PresenceService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).Unix()

	pipe := s.client.GetClient().Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}

	count := results[1].(*redis.IntCmd).Val()

	return count < int64(limit), nil
}

// =============================================================================
// Cache Operations
// =============================================================================

func (s *PresenceService) CacheSet(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.client.GetClient().Set(ctx, key, data, expiration).Err()
}

func (s *PresenceService) CacheGet(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.GetClient().Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *PresenceService) CacheDelete(ctx context.Context, keys ...string) error {
	return s.client.GetClient().Del(ctx, keys...).Err()
}
