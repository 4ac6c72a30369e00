package repository

import (
	"time"

	"microblog/internal/model"

	"gorm.io/gorm"
)

// MessageRepository 消息数据仓储
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建MessageRepository实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建消息
func (r *MessageRepository) Create(message *model.Message) error {
	return r.db.Omit("Sender", "Receiver").Create(message).Error
}

// GetByID 根据ID获取消息
func (r *MessageRepository) GetByID(id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// Conversation 两人之间的全部消息，按时间正序
func (r *MessageRepository) Conversation(userID, otherUserID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, otherUserID, otherUserID, userID,
	).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// IncomingAfter 对方发来的、ID 大于 afterID 的消息
func (r *MessageRepository) IncomingAfter(userID, otherUserID, afterID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("receiver_id = ? AND sender_id = ? AND id > ?", userID, otherUserID, afterID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationAsRead 标记对方发来的未读消息为已读
func (r *MessageRepository) MarkConversationAsRead(userID, otherUserID uint, at time.Time) (int64, error) {
	result := r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read_at IS NULL", userID, otherUserID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

// GetUnreadCount 获取用户未读消息数量
func (r *MessageRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// UnreadCountsBySender 按发送者统计未读数
func (r *MessageRepository) UnreadCountsBySender(userID uint) (map[uint]int64, error) {
	var rows []struct {
		SenderID uint
		Count    int64
	}
	err := r.db.Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND read_at IS NULL", userID).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Count
	}
	return counts, nil
}

// ListInvolving 用户发送或接收的消息，最新在前
func (r *MessageRepository) ListInvolving(userID uint, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
