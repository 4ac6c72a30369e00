package model

import (
	"time"
)

// Message 私信
// ReadAt 为空表示接收方尚未读取
type Message struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SenderID   uint       `gorm:"not null;index;comment:发送者ID" json:"sender_id"`
	ReceiverID uint       `gorm:"not null;index;comment:接收者ID" json:"receiver_id"`
	Content    string     `gorm:"type:text;not null;comment:消息内容" json:"content"`
	ReadAt     *time.Time `gorm:"index;comment:读取时间" json:"read_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index;comment:创建时间" json:"created_at"`

	Sender   *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
}

func (Message) TableName() string { return "message" }
