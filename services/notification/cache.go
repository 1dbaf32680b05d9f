package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"learnhub/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const unreadCountTTL = 30 * time.Second

func unreadCountKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// cachedUnreadCount returns the recipient's unread count from the cache, or
// -1 on a miss. A nil cache client always misses.
func (s *DefaultNotificationService) cachedUnreadCount(ctx context.Context, userID int64) int64 {
	if s.Cache == nil {
		return -1
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	raw, err := s.Cache.Get(ctx, unreadCountKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("notification: unread count cache read failed",
				zap.Int64("userID", userID), zap.Error(err))
		}
		return -1
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return count
}

// storeUnreadCount caches a freshly computed unread count. The short TTL
// bounds staleness when an invalidation is missed.
func (s *DefaultNotificationService) storeUnreadCount(ctx context.Context, userID int64, count int64) {
	if s.Cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.Cache.Set(ctx, unreadCountKey(userID), count, unreadCountTTL).Err(); err != nil {
		utils.GetLogger().Warn("notification: unread count cache write failed",
			zap.Int64("userID", userID), zap.Error(err))
	}
}

// invalidateUnreadCount drops the cached count after any mutation that can
// change it.
func (s *DefaultNotificationService) invalidateUnreadCount(ctx context.Context, userID int64) {
	if s.Cache == nil || userID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.Cache.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		utils.GetLogger().Warn("notification: unread count cache invalidation failed",
			zap.Int64("userID", userID), zap.Error(err))
	}
}
