package service

import (
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InteractionKind 互动事件类型
type InteractionKind string

const (
	KindLike           InteractionKind = "like"
	KindUnlike         InteractionKind = "unlike"
	KindRetweet        InteractionKind = "retweet"
	KindUnretweet      InteractionKind = "unretweet"
	KindReply          InteractionKind = "reply"
	KindFollow         InteractionKind = "follow"
	KindFollowRequest  InteractionKind = "follow_request"
	KindFollowAccepted InteractionKind = "follow_accepted"

	// 取消关注只由关系服务内部使用
	kindUnfollow InteractionKind = "unfollow"
)

// Valid 是否为对外开放的互动类型
func (k InteractionKind) Valid() bool {
	switch k {
	case KindLike, KindUnlike, KindRetweet, KindUnretweet, KindReply,
		KindFollow, KindFollowRequest, KindFollowAccepted:
		return true
	}
	return false
}

// Positive 正向事件加计数并可能产生通知，负向事件减计数且从不通知
func (k InteractionKind) Positive() bool {
	switch k {
	case KindUnlike, KindUnretweet, kindUnfollow:
		return false
	}
	return true
}

// TargetsTweet 目标是推文还是用户
func (k InteractionKind) TargetsTweet() bool {
	switch k {
	case KindLike, KindUnlike, KindRetweet, KindUnretweet, KindReply:
		return true
	}
	return false
}

// notificationType 正向事件对应的通知类型
func (k InteractionKind) notificationType() (model.NotificationType, bool) {
	switch k {
	case KindLike:
		return model.NotificationLike, true
	case KindRetweet:
		return model.NotificationRetweet, true
	case KindReply:
		return model.NotificationComment, true
	case KindFollow:
		return model.NotificationFollow, true
	case KindFollowRequest:
		return model.NotificationFollowRequest, true
	case KindFollowAccepted:
		return model.NotificationFollowAccepted, true
	}
	return "", false
}

// fanOut 在事务内完成一次互动事件的计数变更与通知写入
//
// tweet 用于推文类事件，other 用于用户类事件：
// follow / unfollow 时 other 是被关注者；follow_accepted 时 other 是申请者，
// 即关注边为 other -> actor；follow_request 只通知不计数。
// 返回的通知为 nil 表示无需通知（负向事件或自己触发）
func fanOut(tx *gorm.DB, notifier *Notifier, kind InteractionKind, actor *model.User, tweet *model.Tweet, other *model.User) (*model.Notification, error) {
	if err := adjustCounters(tx, kind, actor, tweet, other); err != nil {
		return nil, err
	}
	if !kind.Positive() {
		return nil, nil
	}
	nt, ok := kind.notificationType()
	if !ok {
		return nil, nil
	}
	var recipientID uint
	var tweetID *uint
	if kind.TargetsTweet() {
		recipientID = tweet.UserID
		id := tweet.ID
		tweetID = &id
	} else {
		recipientID = other.ID
	}
	return notifier.Emit(tx, actor, recipientID, nt, tweetID)
}

func adjustCounters(tx *gorm.DB, kind InteractionKind, actor *model.User, tweet *model.Tweet, other *model.User) error {
	tweets := repository.NewTweetRepository(tx)
	users := repository.NewUserRepository(tx)

	switch kind {
	case KindLike:
		return tweets.IncrementCounter(tweet.ID, repository.ColLikesCount)
	case KindUnlike:
		return floorDecrement(tweets.DecrementCounter, "tweet", tweet.ID, repository.ColLikesCount)
	case KindRetweet:
		return tweets.IncrementCounter(tweet.ID, repository.ColRetweetsCount)
	case KindUnretweet:
		return floorDecrement(tweets.DecrementCounter, "tweet", tweet.ID, repository.ColRetweetsCount)
	case KindReply:
		return tweets.IncrementCounter(tweet.ID, repository.ColRepliesCount)
	case KindFollow:
		if err := users.IncrementCounter(actor.ID, repository.ColFollowingCount); err != nil {
			return err
		}
		return users.IncrementCounter(other.ID, repository.ColFollowersCount)
	case KindFollowAccepted:
		if err := users.IncrementCounter(other.ID, repository.ColFollowingCount); err != nil {
			return err
		}
		return users.IncrementCounter(actor.ID, repository.ColFollowersCount)
	case kindUnfollow:
		if err := floorDecrement(users.DecrementCounter, "user", actor.ID, repository.ColFollowingCount); err != nil {
			return err
		}
		return floorDecrement(users.DecrementCounter, "user", other.ID, repository.ColFollowersCount)
	}
	return nil
}

// floorDecrement 计数已为0时不再递减，只记录告警
func floorDecrement(dec func(uint, string) (bool, error), entity string, id uint, column string) error {
	applied, err := dec(id, column)
	if err != nil {
		return err
	}
	if !applied {
		logger.Warn("计数已为0，忽略递减",
			zap.String("entity", entity),
			zap.Uint("id", id),
			zap.String("column", column),
		)
	}
	return nil
}
