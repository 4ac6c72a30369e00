package model

import (
	"time"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// FollowersCount / FollowingCount / TweetsCount 为冗余计数，
// 只允许通过关系服务、推文服务修改，必须与实际边/推文数量一致
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名" json:"username"`
	Email          string     `gorm:"type:varchar(128);not null;uniqueIndex;comment:邮箱" json:"email"`
	PasswordHash   string     `gorm:"type:varchar(255);not null;comment:密码哈希" json:"-"`
	FullName       string     `gorm:"type:varchar(128);comment:全名" json:"full_name"`
	Bio            string     `gorm:"type:varchar(500);comment:简介" json:"bio"`
	Location       string     `gorm:"type:varchar(128);comment:所在地" json:"location"`
	Website        string     `gorm:"type:varchar(255);comment:个人网站" json:"website"`
	Avatar         string     `gorm:"type:varchar(255);comment:头像路径" json:"avatar"`
	BirthDate      *time.Time `gorm:"comment:生日" json:"birth_date,omitempty"`
	Verified       bool       `gorm:"default:false;comment:是否认证" json:"verified"`
	PrivateAccount bool       `gorm:"default:false;comment:是否私密账号" json:"private_account"`
	FollowersCount int64      `gorm:"not null;default:0;comment:粉丝数" json:"followers_count"`
	FollowingCount int64      `gorm:"not null;default:0;comment:关注数" json:"following_count"`
	TweetsCount    int64      `gorm:"not null;default:0;comment:推文数" json:"tweets_count"`
	CreatedAt      time.Time  `gorm:"comment:创建时间" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"comment:更新时间" json:"updated_at"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }
