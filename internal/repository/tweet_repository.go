package repository

import (
	"microblog/internal/model"

	"gorm.io/gorm"
)

// TweetRepository 推文仓储
type TweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository 创建TweetRepository
func NewTweetRepository(db *gorm.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

func (r *TweetRepository) Create(tweet *model.Tweet) error {
	return r.db.Omit("Hashtags", "User").Create(tweet).Error
}

// GetByID 获取推文（不加载关联）
func (r *TweetRepository) GetByID(id uint) (*model.Tweet, error) {
	var t model.Tweet
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetDetail 获取推文并加载作者与话题
func (r *TweetRepository) GetDetail(id uint) (*model.Tweet, error) {
	var t model.Tweet
	if err := r.db.Preload("User").Preload("Hashtags").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TweetRepository) Delete(id uint) error {
	return r.db.Delete(&model.Tweet{}, id).Error
}

// ListByUser 用户的推文，最新在前
func (r *TweetRepository) ListByUser(userID uint, page, pageSize int) ([]model.Tweet, error) {
	offset, limit := offsetLimit(page, pageSize)
	var tweets []model.Tweet
	err := r.db.Preload("User").Preload("Hashtags").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&tweets).Error
	return tweets, err
}

// ListByAuthors 时间线：给定作者的推文，最新在前
func (r *TweetRepository) ListByAuthors(authorIDs []uint, page, pageSize int) ([]model.Tweet, error) {
	if len(authorIDs) == 0 {
		return []model.Tweet{}, nil
	}
	offset, limit := offsetLimit(page, pageSize)
	var tweets []model.Tweet
	err := r.db.Preload("User").Preload("Hashtags").
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&tweets).Error
	return tweets, err
}

// SearchContent 按内容模糊搜索，最新在前
func (r *TweetRepository) SearchContent(q string, limit int) ([]model.Tweet, error) {
	var tweets []model.Tweet
	err := r.db.Preload("User").Preload("Hashtags").
		Where("content LIKE ?", "%"+q+"%").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&tweets).Error
	return tweets, err
}

// IncrementCounter 计数 +1
func (r *TweetRepository) IncrementCounter(id uint, column string) error {
	return incrementColumn(r.db, &model.Tweet{}, id, column)
}

// DecrementCounter 计数 -1（下限为0）
func (r *TweetRepository) DecrementCounter(id uint, column string) (bool, error) {
	return decrementColumn(r.db, &model.Tweet{}, id, column)
}

// Counters 读取推文当前计数
func (r *TweetRepository) Counters(id uint) (likes, retweets, replies int64, err error) {
	var t model.Tweet
	err = r.db.Select("id", ColLikesCount, ColRetweetsCount, ColRepliesCount).First(&t, id).Error
	return t.LikesCount, t.RetweetsCount, t.RepliesCount, err
}
