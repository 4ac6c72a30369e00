package repository

import (
	"microblog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HashtagRepository 话题仓储
type HashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository 创建HashtagRepository
func NewHashtagRepository(db *gorm.DB) *HashtagRepository {
	return &HashtagRepository{db: db}
}

// GetBySlug 根据 slug 获取话题
func (r *HashtagRepository) GetBySlug(slug string) (*model.Hashtag, error) {
	var h model.Hashtag
	if err := r.db.Where("slug = ?", slug).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// FirstOrCreate 按 slug 获取话题，不存在则以 name 创建
// 并发创建同一 slug 时依赖唯一索引，冲突后重新读取
func (r *HashtagRepository) FirstOrCreate(name, slug string) (*model.Hashtag, error) {
	h := &model.Hashtag{Name: name, Slug: slug}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(h).Error; err != nil {
		return nil, err
	}
	return r.GetBySlug(slug)
}

// AttachTweet 插入推文-话题关联，已存在返回 false
func (r *HashtagRepository) AttachTweet(tweetID, hashtagID uint) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.TweetHashtag{
		TweetID:   tweetID,
		HashtagID: hashtagID,
	})
	return result.RowsAffected > 0, result.Error
}

// ListByTweet 推文关联的话题
func (r *HashtagRepository) ListByTweet(tweetID uint) ([]model.Hashtag, error) {
	var tags []model.Hashtag
	sub := r.db.Model(&model.TweetHashtag{}).Select("hashtag_id").Where("tweet_id = ?", tweetID)
	err := r.db.Where("id IN (?)", sub).Order("id ASC").Find(&tags).Error
	return tags, err
}

// DetachTweet 删除推文的全部话题关联
func (r *HashtagRepository) DetachTweet(tweetID uint) error {
	return r.db.Where("tweet_id = ?", tweetID).Delete(&model.TweetHashtag{}).Error
}

// IncrementCount tweet_count + 1
func (r *HashtagRepository) IncrementCount(id uint) error {
	return incrementColumn(r.db, &model.Hashtag{}, id, ColTweetCount)
}

// DecrementCount tweet_count - 1（下限为0）
func (r *HashtagRepository) DecrementCount(id uint) (bool, error) {
	return decrementColumn(r.db, &model.Hashtag{}, id, ColTweetCount)
}

// SearchPrefix 按名称或 slug 前缀搜索，热度高的在前
func (r *HashtagRepository) SearchPrefix(q string, limit int) ([]model.Hashtag, error) {
	var tags []model.Hashtag
	err := r.db.Where("slug LIKE ? OR name LIKE ?", q+"%", q+"%").
		Order("tweet_count DESC").Order("id ASC").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}

// Top 热门话题
func (r *HashtagRepository) Top(limit int) ([]model.Hashtag, error) {
	var tags []model.Hashtag
	err := r.db.Where("tweet_count > 0").
		Order("tweet_count DESC").Order("id ASC").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}

// ListBySlugs 按 slug 批量获取
func (r *HashtagRepository) ListBySlugs(slugs []string) ([]model.Hashtag, error) {
	var tags []model.Hashtag
	if len(slugs) == 0 {
		return tags, nil
	}
	err := r.db.Where("slug IN ?", slugs).Find(&tags).Error
	return tags, err
}

// TweetsOf 话题下的推文，最新在前
func (r *HashtagRepository) TweetsOf(hashtagID uint, limit int) ([]model.Tweet, error) {
	var tweets []model.Tweet
	sub := r.db.Model(&model.TweetHashtag{}).Select("tweet_id").Where("hashtag_id = ?", hashtagID)
	err := r.db.Preload("User").Preload("Hashtags").
		Where("id IN (?)", sub).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&tweets).Error
	return tweets, err
}
