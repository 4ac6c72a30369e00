package service

import (
	"time"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/logger"
	"microblog/pkg/metrics"
	"microblog/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pusher 实时推送，websocket.Manager 实现了它
type Pusher interface {
	Push(userID uint, eventType string, data interface{}) bool
}

// 推送事件类型
const (
	EventNotification = "notification"
	EventMessage      = "message"
)

// NotificationEvent 推送给客户端的通知内容
type NotificationEvent struct {
	ID           uint                   `json:"id"`
	Type         model.NotificationType `json:"type"`
	Message      string                 `json:"message"`
	TweetID      *uint                  `json:"tweet_id,omitempty"`
	FromUserID   uint                   `json:"from_user_id"`
	FromUsername string                 `json:"from_username"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Notifier 通知写入与投递
// Emit 在事务内写通知表；Deliver 在事务提交后做计数、推送和指标，失败只记日志
type Notifier struct {
	pusher Pusher
}

// NewNotifier pusher 可以为 nil（不做实时推送）
func NewNotifier(pusher Pusher) *Notifier {
	return &Notifier{pusher: pusher}
}

// Emit 写入一条通知；接收者就是触发者本人时不写，返回 nil
func (n *Notifier) Emit(tx *gorm.DB, actor *model.User, recipientID uint, t model.NotificationType, tweetID *uint) (*model.Notification, error) {
	if recipientID == actor.ID {
		return nil, nil
	}
	note := &model.Notification{
		UserID:     recipientID,
		FromUserID: actor.ID,
		Type:       t,
		TweetID:    tweetID,
		Message:    t.Message(actor.Username),
	}
	if err := repository.NewNotificationRepository(tx).Create(note); err != nil {
		return nil, err
	}
	note.FromUser = actor
	return note, nil
}

// Deliver 事务提交后投递通知，nil 会被跳过
func (n *Notifier) Deliver(notes ...*model.Notification) {
	for _, note := range notes {
		if note == nil {
			continue
		}
		metrics.NotificationsEmitted.WithLabelValues(string(note.Type)).Inc()

		if redis.Enabled() {
			if err := redis.IncrementUnreadCount(note.UserID); err != nil {
				logger.Warn("更新未读通知计数失败", zap.Uint("user_id", note.UserID), zap.Error(err))
			}
		}

		if n.pusher != nil {
			n.pusher.Push(note.UserID, EventNotification, toEvent(note))
		}
	}
}

func toEvent(note *model.Notification) NotificationEvent {
	ev := NotificationEvent{
		ID:         note.ID,
		Type:       note.Type,
		Message:    note.Message,
		TweetID:    note.TweetID,
		FromUserID: note.FromUserID,
		CreatedAt:  note.CreatedAt,
	}
	if note.FromUser != nil {
		ev.FromUsername = note.FromUser.Username
	}
	return ev
}
