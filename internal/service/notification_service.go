package service

import (
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/logger"
	"microblog/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

// NotificationService 通知查询与已读管理
// 未读数优先读Redis，缓存缺失时查库并回填
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService 创建通知服务
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List 最新的通知
func (s *NotificationService) List(userID uint, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return repository.NewNotificationRepository(s.db).ListByUser(userID, limit)
}

// MarkAsRead 标记单条通知已读，不属于该用户的通知返回 ErrNotFound
func (s *NotificationService) MarkAsRead(userID, id uint) error {
	repo := repository.NewNotificationRepository(s.db)
	if _, err := repo.GetOwned(userID, id); err != nil {
		return notFound(err, "notification")
	}
	changed, err := repo.MarkAsRead(userID, id)
	if err != nil {
		return err
	}
	if changed && redis.Enabled() {
		if err := redis.DecrementUnreadCount(userID); err != nil {
			logger.Warn("更新未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// MarkAllAsRead 全部标记已读，返回本次标记的条数
func (s *NotificationService) MarkAllAsRead(userID uint) (int64, error) {
	n, err := repository.NewNotificationRepository(s.db).MarkAllAsRead(userID)
	if err != nil {
		return 0, err
	}
	if redis.Enabled() {
		if err := redis.ResetUnreadCount(userID); err != nil {
			logger.Warn("重置未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return n, nil
}

// UnreadCount 未读通知数
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	if redis.Enabled() {
		count, ok, err := redis.GetUnreadCount(userID)
		if err == nil && ok {
			return count, nil
		}
		if err != nil {
			logger.Warn("读取未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	count, err := repository.NewNotificationRepository(s.db).CountUnread(userID)
	if err != nil {
		return 0, err
	}
	if redis.Enabled() {
		if err := redis.SetUnreadCount(userID, count); err != nil {
			logger.Warn("回填未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return count, nil
}
