package service

import (
	"strings"
	"unicode/utf8"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/hashtag"
	"microblog/pkg/logger"
	"microblog/pkg/metrics"
	"microblog/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	hashtagSearchMinLength = 2
	hashtagSearchLimit     = 10
	hashtagTweetsLimit     = 50
	trendingRebuildSize    = 1000
)

// HashtagService 话题字典维护与查询
type HashtagService struct {
	db           *gorm.DB
	trendingSize int
}

// NewHashtagService 创建话题服务
func NewHashtagService(db *gorm.DB, trendingSize int) *HashtagService {
	if trendingSize <= 0 {
		trendingSize = 20
	}
	return &HashtagService{db: db, trendingSize: trendingSize}
}

// AttachHashtags 提取 text 中的话题并关联到推文，需在推文所在事务内调用
// 同一 slug 只关联一次、只计数一次；返回本次新关联的话题
func (s *HashtagService) AttachHashtags(tx *gorm.DB, tweet *model.Tweet, text string) ([]model.Hashtag, error) {
	repo := repository.NewHashtagRepository(tx)
	attached := make([]model.Hashtag, 0)
	seen := make(map[string]struct{})

	for _, name := range hashtag.Extract(text) {
		slug := hashtag.Slugify(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}

		h, err := repo.FirstOrCreate(name, slug)
		if err != nil {
			return nil, err
		}
		created, err := repo.AttachTweet(tweet.ID, h.ID)
		if err != nil {
			return nil, err
		}
		if !created {
			continue
		}
		if err := repo.IncrementCount(h.ID); err != nil {
			return nil, err
		}
		h.TweetCount++
		attached = append(attached, *h)
	}
	return attached, nil
}

// DetachHashtags 删除推文的全部话题关联并递减计数，需在事务内调用
func (s *HashtagService) DetachHashtags(tx *gorm.DB, tweetID uint) ([]model.Hashtag, error) {
	repo := repository.NewHashtagRepository(tx)
	tags, err := repo.ListByTweet(tweetID)
	if err != nil {
		return nil, err
	}
	if err := repo.DetachTweet(tweetID); err != nil {
		return nil, err
	}
	for _, h := range tags {
		if err := floorDecrement(func(id uint, _ string) (bool, error) {
			return repo.DecrementCount(id)
		}, "hashtag", h.ID, repository.ColTweetCount); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

// PublishTrending 事务提交后同步热门话题缓存
func (s *HashtagService) PublishTrending(tags []model.Hashtag, delta int64) {
	if delta > 0 {
		metrics.HashtagsAttached.Add(float64(len(tags)))
	}
	if !redis.Enabled() {
		return
	}
	for _, h := range tags {
		if err := redis.IncrTrending(h.Slug, delta); err != nil {
			logger.Warn("更新热门话题失败", zap.String("slug", h.Slug), zap.Error(err))
		}
	}
}

// GetBySlug 话题详情及其下当前用户可见的推文
func (s *HashtagService) GetBySlug(slug string, viewerID *uint) (*model.Hashtag, []model.Tweet, error) {
	repo := repository.NewHashtagRepository(s.db)
	h, err := repo.GetBySlug(hashtag.Slugify(slug))
	if err != nil {
		return nil, nil, notFound(err, "hashtag")
	}
	tweets, err := repo.TweetsOf(h.ID, hashtagTweetsLimit)
	if err != nil {
		return nil, nil, err
	}
	visible, err := visibleTweets(s.db, tweets, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return h, visible, nil
}

// Search 话题前缀搜索，至少2个字符
func (s *HashtagService) Search(q string) ([]model.Hashtag, error) {
	q = strings.TrimPrefix(strings.TrimSpace(q), "#")
	if utf8.RuneCountInString(q) < hashtagSearchMinLength {
		return []model.Hashtag{}, nil
	}
	return repository.NewHashtagRepository(s.db).SearchPrefix(strings.ToLower(q), hashtagSearchLimit)
}

// Trending 热门话题：优先读Redis，为空或不可用时查库并重建缓存
func (s *HashtagService) Trending(limit int) ([]redis.TrendingHashtag, error) {
	if limit <= 0 || limit > s.trendingSize {
		limit = s.trendingSize
	}

	if redis.Enabled() {
		items, err := redis.TopTrending(limit)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		if err != nil {
			logger.Warn("读取热门话题缓存失败", zap.Error(err))
		}
	}

	repo := repository.NewHashtagRepository(s.db)
	top, err := repo.Top(limit)
	if err != nil {
		return nil, err
	}
	result := toTrending(top)

	if redis.Enabled() && len(result) > 0 {
		all, err := repo.Top(trendingRebuildSize)
		if err == nil {
			err = redis.RebuildTrending(toTrending(all))
		}
		if err != nil {
			logger.Warn("重建热门话题缓存失败", zap.Error(err))
		}
	}
	return result, nil
}

func toTrending(tags []model.Hashtag) []redis.TrendingHashtag {
	out := make([]redis.TrendingHashtag, 0, len(tags))
	for _, h := range tags {
		out = append(out, redis.TrendingHashtag{Slug: h.Slug, TweetCount: h.TweetCount})
	}
	return out
}
