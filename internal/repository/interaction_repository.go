package repository

import (
	"microblog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InteractionRepository 点赞、转发、回复仓储
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository 创建InteractionRepository
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// HasLiked 是否已点赞
func (r *InteractionRepository) HasLiked(userID, tweetID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Like{}).Where("user_id = ? AND tweet_id = ?", userID, tweetID).Count(&count).Error
	return count > 0, err
}

// CreateLike 点赞，已存在时返回 false
func (r *InteractionRepository) CreateLike(userID, tweetID uint) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Like{UserID: userID, TweetID: tweetID})
	return result.RowsAffected > 0, result.Error
}

// DeleteLike 取消点赞，不存在时返回 false
func (r *InteractionRepository) DeleteLike(userID, tweetID uint) (bool, error) {
	result := r.db.Where("user_id = ? AND tweet_id = ?", userID, tweetID).Delete(&model.Like{})
	return result.RowsAffected > 0, result.Error
}

// HasRetweeted 是否已转发
func (r *InteractionRepository) HasRetweeted(userID, tweetID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Retweet{}).Where("user_id = ? AND tweet_id = ?", userID, tweetID).Count(&count).Error
	return count > 0, err
}

// CreateRetweet 转发，已存在时返回 false
func (r *InteractionRepository) CreateRetweet(userID, tweetID uint, comment *string) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Retweet{
		UserID:  userID,
		TweetID: tweetID,
		Comment: comment,
	})
	return result.RowsAffected > 0, result.Error
}

// DeleteRetweet 取消转发，不存在时返回 false
func (r *InteractionRepository) DeleteRetweet(userID, tweetID uint) (bool, error) {
	result := r.db.Where("user_id = ? AND tweet_id = ?", userID, tweetID).Delete(&model.Retweet{})
	return result.RowsAffected > 0, result.Error
}

// CreateReply 创建回复
func (r *InteractionRepository) CreateReply(reply *model.Reply) error {
	return r.db.Omit("User", "Tweet").Create(reply).Error
}

// ListReplies 推文的回复，按时间正序
func (r *InteractionRepository) ListReplies(tweetID uint) ([]model.Reply, error) {
	var replies []model.Reply
	err := r.db.Preload("User").
		Where("tweet_id = ?", tweetID).
		Order("created_at ASC").Order("id ASC").
		Find(&replies).Error
	return replies, err
}
