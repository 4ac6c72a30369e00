package model

import "time"

// Hashtag 话题
// Name 为第一次出现时的话题名（小写，保留重音），Slug 为归一化后的唯一键
// TweetCount 必须等于关联推文数
type Hashtag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(128);not null;comment:话题名" json:"name"`
	Slug       string    `gorm:"type:varchar(128);not null;uniqueIndex;comment:话题slug" json:"slug"`
	TweetCount int64     `gorm:"not null;default:0;index;comment:关联推文数" json:"tweet_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Tweets []Tweet `gorm:"many2many:tweet_hashtag" json:"tweets,omitempty"`
}

func (Hashtag) TableName() string { return "hashtag" }

// TweetHashtag 推文-话题关联表
type TweetHashtag struct {
	TweetID   uint `gorm:"primaryKey"`
	HashtagID uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (TweetHashtag) TableName() string { return "tweet_hashtag" }
