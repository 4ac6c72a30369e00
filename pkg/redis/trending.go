package redis

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// TrendingKey 热门话题有序集合，member 为 slug，score 为关联推文数
const TrendingKey = "mb:hashtags:trending"

// TrendingHashtag 热门话题缓存项
type TrendingHashtag struct {
	Slug       string `json:"slug"`
	TweetCount int64  `json:"tweet_count"`
}

// IncrTrending 调整话题热度，计数不大于0时移出集合
func IncrTrending(slug string, delta int64) error {
	if client == nil {
		return ErrNotInitialized
	}

	score, err := client.ZIncrBy(ctx, TrendingKey, float64(delta), slug).Result()
	if err != nil {
		return fmt.Errorf("更新话题热度失败: %w", err)
	}
	if score <= 0 {
		client.ZRem(ctx, TrendingKey, slug)
	}
	return nil
}

// TopTrending 获取前 n 个热门话题，集合为空时返回空切片
func TopTrending(n int) ([]TrendingHashtag, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}

	items, err := client.ZRevRangeWithScores(ctx, TrendingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取热门话题失败: %w", err)
	}

	result := make([]TrendingHashtag, 0, len(items))
	for _, z := range items {
		slug, _ := z.Member.(string)
		result = append(result, TrendingHashtag{Slug: slug, TweetCount: int64(z.Score)})
	}
	return result, nil
}

// RebuildTrending 用数据库中的计数重建热门话题集合
func RebuildTrending(items []TrendingHashtag) error {
	if client == nil {
		return ErrNotInitialized
	}

	pipe := client.TxPipeline()
	pipe.Del(ctx, TrendingKey)
	members := make([]redis.Z, 0, len(items))
	for _, it := range items {
		if it.TweetCount > 0 {
			members = append(members, redis.Z{Score: float64(it.TweetCount), Member: it.Slug})
		}
	}
	if len(members) > 0 {
		pipe.ZAdd(ctx, TrendingKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("重建热门话题失败: %w", err)
	}
	return nil
}
