package redis

import (
	"fmt"
	"time"
)

// 在线状态相关常量
const (
	PresenceKeyPrefix = "mb:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "mb:online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute     // 在线状态TTL（2倍心跳周期）
)

func presenceKey(userID uint) string {
	return fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)
}

// SetOnline 标记用户在线，值为最近在线时间
func SetOnline(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	pipe := client.TxPipeline()
	pipe.Set(ctx, presenceKey(userID), time.Now().Unix(), PresenceTTL)
	pipe.SAdd(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// SetOffline 移除用户在线状态
func SetOffline(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	pipe := client.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// RefreshPresence 刷新用户在线状态（心跳时延长TTL）
func RefreshPresence(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	ok, err := client.Expire(ctx, presenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		return SetOnline(userID)
	}
	return nil
}

// IsUserOnline 检查用户是否在线
func IsUserOnline(userID uint) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}

	exists, err := client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	return exists > 0, nil
}
