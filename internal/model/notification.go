package model

import (
	"fmt"
	"time"
)

// NotificationType 通知类型（封闭枚举）
type NotificationType string

const (
	NotificationFollow         NotificationType = "follow"
	NotificationFollowRequest  NotificationType = "follow_request"
	NotificationFollowAccepted NotificationType = "follow_accepted"
	NotificationLike           NotificationType = "like"
	NotificationComment        NotificationType = "comment"
	NotificationRetweet        NotificationType = "retweet"
)

// Valid 是否为已知通知类型
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationFollow, NotificationFollowRequest, NotificationFollowAccepted,
		NotificationLike, NotificationComment, NotificationRetweet:
		return true
	}
	return false
}

// Message 根据触发者用户名生成通知文案
func (t NotificationType) Message(actorUsername string) string {
	switch t {
	case NotificationFollow:
		return fmt.Sprintf("@%s started following you", actorUsername)
	case NotificationFollowRequest:
		return fmt.Sprintf("@%s requested to follow you", actorUsername)
	case NotificationFollowAccepted:
		return fmt.Sprintf("@%s accepted your follow request", actorUsername)
	case NotificationLike:
		return fmt.Sprintf("@%s liked your tweet", actorUsername)
	case NotificationComment:
		return fmt.Sprintf("@%s replied to your tweet", actorUsername)
	case NotificationRetweet:
		return fmt.Sprintf("@%s retweeted your tweet", actorUsername)
	}
	return fmt.Sprintf("@%s interacted with you", actorUsername)
}

// Notification 通知
// UserID 为接收者，FromUserID 为触发者；不会为自己触发的行为生成通知
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index:idx_notification_user_read;comment:接收者ID" json:"user_id"`
	FromUserID uint             `gorm:"not null;comment:触发者ID" json:"from_user_id"`
	Type       NotificationType `gorm:"type:varchar(32);not null;comment:通知类型" json:"type"`
	TweetID    *uint            `gorm:"index;comment:关联推文ID" json:"tweet_id,omitempty"`
	Message    string           `gorm:"type:varchar(255);not null" json:"message"`
	IsRead     bool             `gorm:"default:false;index:idx_notification_user_read;comment:是否已读" json:"is_read"`
	CreatedAt  time.Time        `gorm:"index" json:"created_at"`

	User     *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	FromUser *User  `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"from_user,omitempty"`
	Tweet    *Tweet `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Notification) TableName() string { return "notification" }
