package repository

import (
	"gorm.io/gorm"
)

// 计数列只能是下面这些内部常量，不接受外部输入
const (
	ColFollowersCount = "followers_count"
	ColFollowingCount = "following_count"
	ColTweetsCount    = "tweets_count"
	ColLikesCount     = "likes_count"
	ColRetweetsCount  = "retweets_count"
	ColRepliesCount   = "replies_count"
	ColTweetCount     = "tweet_count"
)

// incrementColumn 原子地执行 column = column + 1
func incrementColumn(db *gorm.DB, m interface{}, id uint, column string) error {
	return db.Model(m).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

// decrementColumn 原子地执行 column = column - 1，已经为0时不变
// 返回值表示是否真正减了1；false 说明计数已在下限（或记录不存在）
func decrementColumn(db *gorm.DB, m interface{}, id uint, column string) (bool, error) {
	result := db.Model(m).
		Where("id = ? AND "+column+" > 0", id).
		UpdateColumn(column, gorm.Expr(column+" - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// offsetLimit 分页参数转换，page 从1开始
func offsetLimit(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
