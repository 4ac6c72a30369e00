package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/logger"
	"microblog/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InteractionStatus 推文互动结果
type InteractionStatus string

const (
	StatusLiked       InteractionStatus = "liked"
	StatusUnliked     InteractionStatus = "unliked"
	StatusRetweeted   InteractionStatus = "retweeted"
	StatusUnretweeted InteractionStatus = "unretweeted"
	StatusReplied     InteractionStatus = "replied"
	StatusAccepted    InteractionStatus = "accepted"
)

// InteractionResult 互动结果；Count 为推文对应计数的最新值（用户类事件为0）
type InteractionResult struct {
	Kind         InteractionKind     `json:"kind"`
	Status       string              `json:"status"`
	Count        int64               `json:"count"`
	Reply        *model.Reply        `json:"reply,omitempty"`
	Notification *model.Notification `json:"-"`
}

// Interactions 当前用户对一条推文的互动情况
type Interactions struct {
	HasLiked      bool  `json:"has_liked"`
	HasRetweeted  bool  `json:"has_retweeted"`
	LikesCount    int64 `json:"likes_count"`
	RetweetsCount int64 `json:"retweets_count"`
	RepliesCount  int64 `json:"replies_count"`
}

type interactionOptions struct {
	content string
	comment *string
	image   *string
}

// InteractionOption ApplyInteraction 的可选参数
type InteractionOption func(*interactionOptions)

// WithContent 回复内容
func WithContent(content string) InteractionOption {
	return func(o *interactionOptions) { o.content = content }
}

// WithComment 转发附言
func WithComment(comment string) InteractionOption {
	return func(o *interactionOptions) { o.comment = &comment }
}

// WithImage 回复图片
func WithImage(image string) InteractionOption {
	return func(o *interactionOptions) { o.image = &image }
}

// InteractionService 点赞、转发、回复
type InteractionService struct {
	db             *gorm.DB
	notifier       *Notifier
	graph          *GraphService
	maxReplyLength int
}

// NewInteractionService 创建互动服务
func NewInteractionService(db *gorm.DB, notifier *Notifier, graph *GraphService, maxReplyLength int) *InteractionService {
	if maxReplyLength <= 0 {
		maxReplyLength = DefaultMaxTweetLength
	}
	return &InteractionService{db: db, notifier: notifier, graph: graph, maxReplyLength: maxReplyLength}
}

// ApplyInteraction 统一入口
// 推文类事件 targetID 为推文ID；follow / follow_request 为目标用户ID；
// follow_accepted 为关注申请ID，actorID 为接受申请的用户
func (s *InteractionService) ApplyInteraction(kind InteractionKind, actorID, targetID uint, opts ...InteractionOption) (*InteractionResult, error) {
	o := &interactionOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch kind {
	case KindLike:
		return s.ToggleLike(actorID, targetID)
	case KindUnlike:
		return s.Unlike(actorID, targetID)
	case KindRetweet:
		return s.Retweet(actorID, targetID, o.comment)
	case KindUnretweet:
		return s.Unretweet(actorID, targetID)
	case KindReply:
		return s.Reply(actorID, targetID, o.content, o.image)
	case KindFollow:
		if err := s.graph.Follow(actorID, targetID); err != nil {
			return nil, err
		}
		return &InteractionResult{Kind: kind, Status: string(StatusFollowed)}, nil
	case KindFollowRequest:
		status, err := s.graph.RequestFollow(actorID, targetID)
		if err != nil {
			return nil, err
		}
		return &InteractionResult{Kind: kind, Status: string(status)}, nil
	case KindFollowAccepted:
		if err := s.graph.AcceptFollowRequest(targetID, actorID); err != nil {
			return nil, err
		}
		return &InteractionResult{Kind: kind, Status: string(StatusAccepted)}, nil
	}
	return nil, validationError("unknown interaction kind %q", kind)
}

// tweetTx 在事务内读取操作者与推文后执行 fn，提交后投递通知并记录指标
// 与作者存在拉黑关系或看不到作者内容时，不允许新增互动
func (s *InteractionService) tweetTx(actorID, tweetID uint, positive bool, fn func(tx *gorm.DB, actor *model.User, tweet *model.Tweet) (*InteractionResult, error)) (*InteractionResult, error) {
	var result *InteractionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := repository.NewUserRepository(tx).GetByID(actorID)
		if err != nil {
			return notFound(err, "user")
		}
		tweet, err := repository.NewTweetRepository(tx).GetByID(tweetID)
		if err != nil {
			return notFound(err, "tweet")
		}
		if positive && tweet.UserID != actorID {
			if err := s.ensureCanInteract(tx, actorID, tweet.UserID); err != nil {
				return err
			}
		}
		result, err = fn(tx, actor, tweet)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(result.Notification)
	metrics.Interactions.WithLabelValues(string(result.Kind)).Inc()
	logger.Info("推文互动",
		zap.String("kind", string(result.Kind)),
		zap.Uint("actor_id", actorID),
		zap.Uint("tweet_id", tweetID),
		zap.Int64("count", result.Count),
	)
	return result, nil
}

func (s *InteractionService) ensureCanInteract(tx *gorm.DB, actorID, ownerID uint) error {
	if err := ensureNotBlocked(tx, actorID, ownerID); err != nil {
		return err
	}
	owner, err := repository.NewUserRepository(tx).GetByID(ownerID)
	if err != nil {
		return notFound(err, "user")
	}
	ok, err := canView(tx, owner, &actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// apply 执行计数与通知并读取最新计数
func (s *InteractionService) apply(tx *gorm.DB, kind InteractionKind, status InteractionStatus, actor *model.User, tweet *model.Tweet, column string) (*InteractionResult, error) {
	note, err := fanOut(tx, s.notifier, kind, actor, tweet, nil)
	if err != nil {
		return nil, err
	}
	likes, retweets, replies, err := repository.NewTweetRepository(tx).Counters(tweet.ID)
	if err != nil {
		return nil, err
	}
	count := map[string]int64{
		repository.ColLikesCount:    likes,
		repository.ColRetweetsCount: retweets,
		repository.ColRepliesCount:  replies,
	}[column]
	return &InteractionResult{Kind: kind, Status: string(status), Count: count, Notification: note}, nil
}

// ToggleLike 未点赞则点赞，已点赞则取消
func (s *InteractionService) ToggleLike(actorID, tweetID uint) (*InteractionResult, error) {
	return s.tweetTx(actorID, tweetID, false, func(tx *gorm.DB, actor *model.User, tweet *model.Tweet) (*InteractionResult, error) {
		interactions := repository.NewInteractionRepository(tx)
		removed, err := interactions.DeleteLike(actorID, tweetID)
		if err != nil {
			return nil, err
		}
		if removed {
			return s.apply(tx, KindUnlike, StatusUnliked, actor, tweet, repository.ColLikesCount)
		}
		if tweet.UserID != actorID {
			if err := s.ensureCanInteract(tx, actorID, tweet.UserID); err != nil {
				return nil, err
			}
		}
		if _, err := interactions.CreateLike(actorID, tweetID); err != nil {
			return nil, err
		}
		return s.apply(tx, KindLike, StatusLiked, actor, tweet, repository.ColLikesCount)
	})
}

// Unlike 取消点赞，未点赞时返回 ErrNotFound
func (s *InteractionService) Unlike(actorID, tweetID uint) (*InteractionResult, error) {
	return s.tweetTx(actorID, tweetID, false, func(tx *gorm.DB, actor *model.User, tweet *model.Tweet) (*InteractionResult, error) {
		removed, err := repository.NewInteractionRepository(tx).DeleteLike(actorID, tweetID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, fmt.Errorf("like %w", ErrNotFound)
		}
		return s.apply(tx, KindUnlike, StatusUnliked, actor, tweet, repository.ColLikesCount)
	})
}

// Retweet 转发，重复转发返回 ErrDuplicateInteraction
func (s *InteractionService) Retweet(actorID, tweetID uint, comment *string) (*InteractionResult, error) {
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			comment = nil
		} else if utf8.RuneCountInString(trimmed) > s.maxReplyLength {
			return nil, validationError("comment exceeds %d characters", s.maxReplyLength)
		} else {
			comment = &trimmed
		}
	}
	return s.tweetTx(actorID, tweetID, true, func(tx *gorm.DB, actor *model.User, tweet *model.Tweet) (*InteractionResult, error) {
		created, err := repository.NewInteractionRepository(tx).CreateRetweet(actorID, tweetID, comment)
		if err != nil {
			return nil, err
		}
		if !created {
			return nil, ErrDuplicateInteraction
		}
		return s.apply(tx, KindRetweet, StatusRetweeted, actor, tweet, repository.ColRetweetsCount)
	})
}

// Unretweet 取消转发，未转发时返回 ErrNotFound
func (s *InteractionService) Unretweet(actorID, tweetID uint) (*InteractionResult, error) {
	return s.tweetTx(actorID, tweetID, false, func(tx *gorm.DB, actor *model.User, tweet *model.Tweet) (*InteractionResult, error) {
		removed, err := repository.NewInteractionRepository(tx).DeleteRetweet(actorID, tweetID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, fmt.Errorf("retweet %w", ErrNotFound)
		}
		return s.apply(tx, KindUnretweet, StatusUnretweeted, actor, tweet, repository.ColRetweetsCount)
	})
}

// Reply 回复推文，可多次回复
func (s *InteractionService) Reply(actorID, tweetID uint, content string, image *string) (*InteractionResult, error) {
	content, err := normalizeContent(content, s.maxReplyLength)
	if err != nil {
		return nil, err
	}
	return s.tweetTx(actorID, tweetID, true, func(tx *gorm.DB, actor *model.User, tweet *model.Tweet) (*InteractionResult, error) {
		reply := &model.Reply{UserID: actorID, TweetID: tweetID, Content: content, Image: image}
		if err := repository.NewInteractionRepository(tx).CreateReply(reply); err != nil {
			return nil, err
		}
		result, err := s.apply(tx, KindReply, StatusReplied, actor, tweet, repository.ColRepliesCount)
		if err != nil {
			return nil, err
		}
		reply.User = actor
		result.Reply = reply
		return result, nil
	})
}

// GetInteractions 当前用户是否点赞/转发过以及最新计数，viewerID 为 nil 时只返回计数
func (s *InteractionService) GetInteractions(viewerID *uint, tweetID uint) (*Interactions, error) {
	tweets := repository.NewTweetRepository(s.db)
	likes, retweets, replies, err := tweets.Counters(tweetID)
	if err != nil {
		return nil, notFound(err, "tweet")
	}
	res := &Interactions{LikesCount: likes, RetweetsCount: retweets, RepliesCount: replies}
	if viewerID == nil {
		return res, nil
	}
	interactions := repository.NewInteractionRepository(s.db)
	if res.HasLiked, err = interactions.HasLiked(*viewerID, tweetID); err != nil {
		return nil, err
	}
	if res.HasRetweeted, err = interactions.HasRetweeted(*viewerID, tweetID); err != nil {
		return nil, err
	}
	return res, nil
}

// ListReplies 推文的回复列表，受作者可见性限制
func (s *InteractionService) ListReplies(viewerID *uint, tweetID uint) ([]model.Reply, error) {
	tweet, err := repository.NewTweetRepository(s.db).GetDetail(tweetID)
	if err != nil {
		return nil, notFound(err, "tweet")
	}
	if tweet.User != nil {
		ok, err := canView(s.db, tweet.User, viewerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}
	return repository.NewInteractionRepository(s.db).ListReplies(tweetID)
}
