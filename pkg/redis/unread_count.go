package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 未读通知计数相关常量
const (
	UnreadCountKeyPrefix = "mb:notifications:unread:" // 未读通知计数key前缀
	UnreadCountTTL       = 24 * time.Hour
)

func unreadKey(userID uint) string {
	return fmt.Sprintf("%s%d", UnreadCountKeyPrefix, userID)
}

// IncrementUnreadCount 增加用户未读通知计数
// key 不存在时不创建，避免在缓存冷启动时得到偏小的计数
func IncrementUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	key := unreadKey(userID)
	exists, err := client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("检查未读通知计数失败: %w", err)
	}
	if exists == 0 {
		return nil
	}

	pipe := client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, UnreadCountTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("增加未读通知计数失败: %w", err)
	}
	return nil
}

// DecrementUnreadCount 减少用户未读通知计数，归零后删除key
func DecrementUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	key := unreadKey(userID)
	count, err := client.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("减少未读通知计数失败: %w", err)
	}
	if count <= 0 {
		client.Del(ctx, key)
	}
	return nil
}

// GetUnreadCount 获取用户未读通知计数
// ok 为 false 表示缓存未命中，需要从数据库获取
func GetUnreadCount(userID uint) (count int64, ok bool, err error) {
	if client == nil {
		return 0, false, ErrNotInitialized
	}

	count, err = client.Get(ctx, unreadKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("获取未读通知计数失败: %w", err)
	}
	return count, true, nil
}

// SetUnreadCount 设置用户未读通知计数（用于从数据库同步）
func SetUnreadCount(userID uint, count int64) error {
	if client == nil {
		return ErrNotInitialized
	}

	if err := client.Set(ctx, unreadKey(userID), count, UnreadCountTTL).Err(); err != nil {
		return fmt.Errorf("设置未读通知计数失败: %w", err)
	}
	return nil
}

// ResetUnreadCount 重置用户未读通知计数为0
func ResetUnreadCount(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	if err := client.Set(ctx, unreadKey(userID), 0, UnreadCountTTL).Err(); err != nil {
		return fmt.Errorf("重置未读通知计数失败: %w", err)
	}
	return nil
}

// InvalidateUnreadCount 删除用户的未读计数缓存，下次读取时从数据库同步
func InvalidateUnreadCount(userIDs ...uint) error {
	if client == nil {
		return ErrNotInitialized
	}
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, unreadKey(id))
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("清除未读通知计数失败: %w", err)
	}
	return nil
}
