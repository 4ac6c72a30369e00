package redis

import (
	"fmt"
	"time"
)

// 离线推送相关常量
const (
	OfflinePushKeyPrefix = "mb:push:offline:" // 离线推送队列key前缀
	MaxOfflinePushes     = 100                // 每个用户最多保留的离线推送条数
	OfflinePushTTL       = 7 * 24 * time.Hour // 离线推送保留时间
)

func offlineKey(userID uint) string {
	return fmt.Sprintf("%s%d", OfflinePushKeyPrefix, userID)
}

// AddOfflinePush 为不在线的用户保存一条推送（JSON），超出上限时丢弃最旧的
func AddOfflinePush(userID uint, payload []byte) error {
	if client == nil {
		return ErrNotInitialized
	}

	key := offlineKey(userID)
	pipe := client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -MaxOfflinePushes, -1)
	pipe.Expire(ctx, key, OfflinePushTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("保存离线推送失败: %w", err)
	}
	return nil
}

// TakeOfflinePushes 取出并清空用户的离线推送，按入队顺序返回
func TakeOfflinePushes(userID uint) ([][]byte, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}

	key := offlineKey(userID)
	pipe := client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("获取离线推送失败: %w", err)
	}

	items := rangeCmd.Val()
	result := make([][]byte, 0, len(items))
	for _, it := range items {
		result = append(result, []byte(it))
	}
	return result, nil
}

// OfflinePushCount 获取用户离线推送数量
func OfflinePushCount(userID uint) (int64, error) {
	if client == nil {
		return 0, ErrNotInitialized
	}
	return client.LLen(ctx, offlineKey(userID)).Result()
}
