package repository

import (
	"microblog/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository 通知仓储
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建NotificationRepository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.db.Omit("User", "FromUser", "Tweet").Create(n).Error
}

// ListByUser 用户的通知，最新在前
func (r *NotificationRepository) ListByUser(userID uint, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.Preload("FromUser").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// GetOwned 获取属于 userID 的通知
func (r *NotificationRepository) GetOwned(userID, id uint) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAsRead 标记单条已读，返回是否由未读变为已读
func (r *NotificationRepository) MarkAsRead(userID, id uint) (bool, error) {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Update("is_read", true)
	return result.RowsAffected > 0, result.Error
}

// MarkAllAsRead 全部标记已读，返回受影响条数
func (r *NotificationRepository) MarkAllAsRead(userID uint) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// CountUnread 未读数量
func (r *NotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// UnreadRecipientsByTweet 持有该推文未读通知的用户
func (r *NotificationRepository) UnreadRecipientsByTweet(tweetID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Notification{}).
		Where("tweet_id = ? AND is_read = ?", tweetID, false).
		Distinct().Pluck("user_id", &ids).Error
	return ids, err
}

// CountByType 用户某类通知数量
func (r *NotificationRepository) CountByType(userID uint, t model.NotificationType) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", userID, t).
		Count(&count).Error
	return count, err
}
