package model

import (
	"fmt"
	"time"
)

// Follow 关注关系（Follower 关注 Following）
// idx_follow_pair = (follower_id, following_id) 唯一，避免重复关注
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index;comment:关注者ID" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index;comment:被关注者ID" json:"following_id"`
	Accepted    bool      `gorm:"default:true;comment:是否已接受" json:"accepted"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	Following *User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"following,omitempty"`
}

func (Follow) TableName() string { return "follow" }

// FollowRequestStatus 关注申请状态
type FollowRequestStatus string

const (
	FollowRequestPending  FollowRequestStatus = "pending"
	FollowRequestAccepted FollowRequestStatus = "accepted"
	FollowRequestRejected FollowRequestStatus = "rejected"
)

// FollowRequest 关注申请（目标为私密账号时产生）
// 同一 (requester, requested) 同时最多一条 pending：PendingKey 在 pending 期间为
// "requester:requested"，处理后置 NULL，唯一索引只约束待处理的申请
type FollowRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	RequesterID uint                `gorm:"not null;index:idx_follow_request_pair;comment:申请者ID" json:"requester_id"`
	RequestedID uint                `gorm:"not null;index:idx_follow_request_pair;index;comment:被申请者ID" json:"requested_id"`
	Status      FollowRequestStatus `gorm:"type:varchar(16);not null;default:'pending';index;comment:申请状态" json:"status"`
	PendingKey  *string             `gorm:"type:varchar(64);uniqueIndex:idx_follow_request_pending;comment:待处理唯一键" json:"-"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	Requester *User `gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE" json:"requester,omitempty"`
	Requested *User `gorm:"foreignKey:RequestedID;constraint:OnDelete:CASCADE" json:"-"`
}

func (FollowRequest) TableName() string { return "follow_request" }

// FollowRequestPendingKey 待处理申请的唯一键
func FollowRequestPendingKey(requesterID, requestedID uint) string {
	return fmt.Sprintf("%d:%d", requesterID, requestedID)
}

// Block 拉黑关系（Blocker 拉黑 Blocked）
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_block_pair;index;comment:拉黑者ID" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_block_pair;index;comment:被拉黑者ID" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`

	Blocker *User `gorm:"foreignKey:BlockerID;constraint:OnDelete:CASCADE" json:"-"`
	Blocked *User `gorm:"foreignKey:BlockedID;constraint:OnDelete:CASCADE" json:"blocked,omitempty"`
}

func (Block) TableName() string { return "block" }
