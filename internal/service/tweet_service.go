package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/logger"
	"microblog/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultMaxTweetLength 推文默认最大字符数
const DefaultMaxTweetLength = 280

// normalizeContent 去掉首尾空白后校验长度（按字符计）
func normalizeContent(content string, maxLength int) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", validationError("content is required")
	}
	if n := utf8.RuneCountInString(content); n > maxLength {
		return "", validationError("content is %d characters, max %d", n, maxLength)
	}
	return content, nil
}

// TweetService 推文
type TweetService struct {
	db        *gorm.DB
	hashtags  *HashtagService
	maxLength int
}

// NewTweetService 创建推文服务
func NewTweetService(db *gorm.DB, hashtags *HashtagService, maxLength int) *TweetService {
	if maxLength <= 0 {
		maxLength = DefaultMaxTweetLength
	}
	return &TweetService{db: db, hashtags: hashtags, maxLength: maxLength}
}

// Create 发推：创建推文、作者推文数+1、关联话题在同一事务内完成
func (s *TweetService) Create(userID uint, content string, image *string) (*model.Tweet, error) {
	content, err := normalizeContent(content, s.maxLength)
	if err != nil {
		return nil, err
	}
	if image != nil && strings.TrimSpace(*image) == "" {
		image = nil
	}

	tweet := &model.Tweet{UserID: userID, Content: content, Image: image}
	var attached []model.Hashtag
	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		if _, err := users.GetByID(userID); err != nil {
			return notFound(err, "user")
		}
		if err := repository.NewTweetRepository(tx).Create(tweet); err != nil {
			return err
		}
		if err := users.IncrementCounter(userID, repository.ColTweetsCount); err != nil {
			return err
		}
		attached, err = s.hashtags.AttachHashtags(tx, tweet, content)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.hashtags.PublishTrending(attached, 1)
	logger.Info("推文已发布",
		zap.Uint("user_id", userID),
		zap.Uint("tweet_id", tweet.ID),
		zap.Int("hashtags", len(attached)),
	)
	return repository.NewTweetRepository(s.db).GetDetail(tweet.ID)
}

// Delete 删除推文，只有作者本人可以删除
// 点赞、转发、回复、相关通知由外键级联清理
func (s *TweetService) Delete(userID, tweetID uint) error {
	var detached []model.Hashtag
	var unreadHolders []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tweets := repository.NewTweetRepository(tx)
		tweet, err := tweets.GetByID(tweetID)
		if err != nil {
			return notFound(err, "tweet")
		}
		if tweet.UserID != userID {
			return ErrForbidden
		}
		if detached, err = s.hashtags.DetachHashtags(tx, tweetID); err != nil {
			return err
		}
		// 未读通知随推文级联删除，提交后需要让这些用户的未读计数缓存失效
		if unreadHolders, err = repository.NewNotificationRepository(tx).UnreadRecipientsByTweet(tweetID); err != nil {
			return err
		}
		if err := tweets.Delete(tweetID); err != nil {
			return err
		}
		return floorDecrement(repository.NewUserRepository(tx).DecrementCounter, "user", userID, repository.ColTweetsCount)
	})
	if err != nil {
		return err
	}

	s.hashtags.PublishTrending(detached, -1)
	if len(unreadHolders) > 0 && redis.Enabled() {
		if err := redis.InvalidateUnreadCount(unreadHolders...); err != nil {
			logger.Warn("清除未读通知计数失败", zap.Uint("tweet_id", tweetID), zap.Error(err))
		}
	}
	logger.Info("推文已删除", zap.Uint("user_id", userID), zap.Uint("tweet_id", tweetID))
	return nil
}

// GetByID 获取推文，作者内容不可见时返回 ErrForbidden
func (s *TweetService) GetByID(viewerID *uint, tweetID uint) (*model.Tweet, error) {
	tweet, err := repository.NewTweetRepository(s.db).GetDetail(tweetID)
	if err != nil {
		return nil, notFound(err, "tweet")
	}
	if tweet.User == nil {
		return nil, fmt.Errorf("tweet author %w", ErrNotFound)
	}
	ok, err := canView(s.db, tweet.User, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return tweet, nil
}

// ListByUser 用户主页推文
func (s *TweetService) ListByUser(ownerID uint, viewerID *uint, page, pageSize int) ([]model.Tweet, error) {
	owner, err := repository.NewUserRepository(s.db).GetByID(ownerID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	ok, err := canView(s.db, owner, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return repository.NewTweetRepository(s.db).ListByUser(ownerID, page, pageSize)
}

// Feed 时间线：自己和关注的人的推文，排除存在拉黑关系的作者
func (s *TweetService) Feed(userID uint, page, pageSize int) ([]model.Tweet, error) {
	following, err := repository.NewFollowRepository(s.db).FollowingIDs(userID)
	if err != nil {
		return nil, err
	}
	related, err := repository.NewBlockRepository(s.db).RelatedIDs(userID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[uint]struct{}, len(related))
	for _, id := range related {
		excluded[id] = struct{}{}
	}
	authors := []uint{userID}
	for _, id := range following {
		if _, ok := excluded[id]; !ok {
			authors = append(authors, id)
		}
	}
	return repository.NewTweetRepository(s.db).ListByAuthors(authors, page, pageSize)
}

// visibleTweets 过滤掉当前访问者看不到的推文（私密作者、存在拉黑关系的作者）
func visibleTweets(db *gorm.DB, tweets []model.Tweet, viewerID *uint) ([]model.Tweet, error) {
	excluded := map[uint]struct{}{}
	if viewerID != nil {
		related, err := repository.NewBlockRepository(db).RelatedIDs(*viewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range related {
			excluded[id] = struct{}{}
		}
	}

	decided := map[uint]bool{}
	out := make([]model.Tweet, 0, len(tweets))
	for _, t := range tweets {
		if _, ok := excluded[t.UserID]; ok || t.User == nil {
			continue
		}
		ok, seen := decided[t.UserID]
		if !seen {
			var err error
			if ok, err = canView(db, t.User, viewerID); err != nil {
				return nil, err
			}
			decided[t.UserID] = ok
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
