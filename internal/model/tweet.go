package model

import "time"

// Tweet 推文
// LikesCount / RetweetsCount / RepliesCount 为冗余计数，只由互动服务维护
type Tweet struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index;comment:作者ID" json:"user_id"`
	Content       string    `gorm:"type:varchar(1024);not null;comment:内容" json:"content"`
	Image         *string   `gorm:"type:varchar(255);comment:图片路径" json:"image,omitempty"`
	LikesCount    int64     `gorm:"not null;default:0" json:"likes_count"`
	RetweetsCount int64     `gorm:"not null;default:0" json:"retweets_count"`
	RepliesCount  int64     `gorm:"not null;default:0" json:"replies_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Hashtags []Hashtag `gorm:"many2many:tweet_hashtag;constraint:OnDelete:CASCADE" json:"hashtags,omitempty"`
}

func (Tweet) TableName() string { return "tweet" }

// Like 点赞，(user_id, tweet_id) 唯一
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_pair" json:"user_id"`
	TweetID   uint      `gorm:"not null;uniqueIndex:idx_like_pair;index" json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tweet *Tweet `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string { return "tweet_like" }

// Retweet 转发，(user_id, tweet_id) 唯一，可附带评论
type Retweet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_retweet_pair" json:"user_id"`
	TweetID   uint      `gorm:"not null;uniqueIndex:idx_retweet_pair;index" json:"tweet_id"`
	Comment   *string   `gorm:"type:varchar(1024)" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tweet *Tweet `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Retweet) TableName() string { return "retweet" }

// Reply 回复，同一用户可多次回复同一推文
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	TweetID   uint      `gorm:"not null;index" json:"tweet_id"`
	Content   string    `gorm:"type:varchar(1024);not null" json:"content"`
	Image     *string   `gorm:"type:varchar(255)" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Tweet *Tweet `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Reply) TableName() string { return "reply" }
