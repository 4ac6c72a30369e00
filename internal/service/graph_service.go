package service

import (
	"fmt"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/logger"
	"microblog/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowStatus 关注操作结果
type FollowStatus string

const (
	StatusFollowed    FollowStatus = "followed"
	StatusUnfollowed  FollowStatus = "unfollowed"
	StatusRequestSent FollowStatus = "request_sent"
)

// BlockStatus 拉黑操作结果
type BlockStatus string

const (
	StatusBlocked   BlockStatus = "blocked"
	StatusUnblocked BlockStatus = "unblocked"
)

// GraphService 关注、关注申请、拉黑
// 每个写操作在一个事务内完成边与计数的变更以及通知写入
type GraphService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewGraphService 创建关系服务
func NewGraphService(db *gorm.DB, notifier *Notifier) *GraphService {
	return &GraphService{db: db, notifier: notifier}
}

// loadPair 读取操作双方，任一不存在返回 ErrNotFound
func loadPair(tx *gorm.DB, actorID, targetID uint) (*model.User, *model.User, error) {
	users := repository.NewUserRepository(tx)
	actor, err := users.GetByID(actorID)
	if err != nil {
		return nil, nil, notFound(err, "user")
	}
	target, err := users.GetByID(targetID)
	if err != nil {
		return nil, nil, notFound(err, "user")
	}
	return actor, target, nil
}

// ensureNotBlocked 双方任意方向存在拉黑时返回 ErrBlocked
func ensureNotBlocked(tx *gorm.DB, a, b uint) error {
	blocked, err := repository.NewBlockRepository(tx).EitherBlocks(a, b)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlocked
	}
	return nil
}

// RequestFollow 关注意图：私密账号生成关注申请，公开账号直接关注
func (s *GraphService) RequestFollow(actorID, targetID uint) (FollowStatus, error) {
	if actorID == targetID {
		return "", ErrSelfReference
	}

	var status FollowStatus
	var note *model.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, target, err := loadPair(tx, actorID, targetID)
		if err != nil {
			return err
		}
		if err := ensureNotBlocked(tx, actorID, targetID); err != nil {
			return err
		}

		following, err := repository.NewFollowRepository(tx).Exists(actorID, targetID)
		if err != nil {
			return err
		}
		if following {
			return ErrAlreadyFollowing
		}

		requests := repository.NewFollowRequestRepository(tx)
		pending, err := requests.HasPending(actorID, targetID)
		if err != nil {
			return err
		}
		if pending {
			return ErrDuplicateRequest
		}

		if target.PrivateAccount {
			_, created, err := requests.Create(actorID, targetID)
			if err != nil {
				return err
			}
			if !created {
				return ErrDuplicateRequest
			}
			status = StatusRequestSent
			note, err = fanOut(tx, s.notifier, KindFollowRequest, actor, nil, target)
			return err
		}

		status = StatusFollowed
		note, err = s.follow(tx, actor, target)
		return err
	})
	if err != nil {
		return "", err
	}

	s.notifier.Deliver(note)
	metrics.GraphTransitions.WithLabelValues(string(status)).Inc()
	logger.Info("关注请求已处理",
		zap.Uint("actor_id", actorID),
		zap.Uint("target_id", targetID),
		zap.String("status", string(status)),
	)
	return status, nil
}

// follow 创建关注边并计数、通知；边已存在返回 ErrAlreadyFollowing
func (s *GraphService) follow(tx *gorm.DB, actor, target *model.User) (*model.Notification, error) {
	created, err := repository.NewFollowRepository(tx).Create(actor.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyFollowing
	}
	return fanOut(tx, s.notifier, KindFollow, actor, nil, target)
}

// unfollow 删除关注边并递减计数，返回是否确实存在过
func unfollow(tx *gorm.DB, follower, following *model.User) (bool, error) {
	deleted, err := repository.NewFollowRepository(tx).Delete(follower.ID, following.ID)
	if err != nil || !deleted {
		return false, err
	}
	if _, err := fanOut(tx, nil, kindUnfollow, follower, nil, following); err != nil {
		return false, err
	}
	return true, nil
}

// Follow 直接关注（不检查私密设置），已关注返回 ErrAlreadyFollowing
func (s *GraphService) Follow(actorID, targetID uint) error {
	if actorID == targetID {
		return ErrSelfReference
	}
	var note *model.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, target, err := loadPair(tx, actorID, targetID)
		if err != nil {
			return err
		}
		if err := ensureNotBlocked(tx, actorID, targetID); err != nil {
			return err
		}
		note, err = s.follow(tx, actor, target)
		return err
	})
	if err != nil {
		return err
	}
	s.notifier.Deliver(note)
	metrics.GraphTransitions.WithLabelValues(string(StatusFollowed)).Inc()
	return nil
}

// ToggleFollow 已关注则取消，否则直接关注（不检查私密设置）
func (s *GraphService) ToggleFollow(actorID, targetID uint) (FollowStatus, error) {
	if actorID == targetID {
		return "", ErrSelfReference
	}

	var status FollowStatus
	var note *model.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, target, err := loadPair(tx, actorID, targetID)
		if err != nil {
			return err
		}
		removed, err := unfollow(tx, actor, target)
		if err != nil {
			return err
		}
		if removed {
			status = StatusUnfollowed
			return nil
		}
		if err := ensureNotBlocked(tx, actorID, targetID); err != nil {
			return err
		}
		status = StatusFollowed
		note, err = s.follow(tx, actor, target)
		return err
	})
	if err != nil {
		return "", err
	}

	s.notifier.Deliver(note)
	metrics.GraphTransitions.WithLabelValues(string(status)).Inc()
	logger.Info("关注状态切换",
		zap.Uint("actor_id", actorID),
		zap.Uint("target_id", targetID),
		zap.String("status", string(status)),
	)
	return status, nil
}

// loadPendingRequest 读取发给 respondingUserID 的待处理申请
func loadPendingRequest(tx *gorm.DB, requestID, respondingUserID uint) (*model.FollowRequest, error) {
	fr, err := repository.NewFollowRequestRepository(tx).GetByID(requestID)
	if err != nil {
		return nil, notFound(err, "follow request")
	}
	if fr.RequestedID != respondingUserID || fr.Status != model.FollowRequestPending {
		return nil, fmt.Errorf("follow request %w", ErrNotFound)
	}
	return fr, nil
}

// AcceptFollowRequest 接受关注申请：建立 申请者 -> 被申请者 的关注边并通知申请者
func (s *GraphService) AcceptFollowRequest(requestID, respondingUserID uint) error {
	var note *model.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fr, err := loadPendingRequest(tx, requestID, respondingUserID)
		if err != nil {
			return err
		}
		resolved, err := repository.NewFollowRequestRepository(tx).Resolve(fr.ID, model.FollowRequestAccepted)
		if err != nil {
			return err
		}
		if !resolved {
			return fmt.Errorf("follow request %w", ErrNotFound)
		}

		responder, requester, err := loadPair(tx, respondingUserID, fr.RequesterID)
		if err != nil {
			return err
		}
		created, err := repository.NewFollowRepository(tx).Create(requester.ID, responder.ID)
		if err != nil {
			return err
		}
		if created {
			note, err = fanOut(tx, s.notifier, KindFollowAccepted, responder, nil, requester)
			return err
		}
		// 关注边已通过其他途径建立，计数不再变动，仍告知申请者
		note, err = s.notifier.Emit(tx, responder, requester.ID, model.NotificationFollowAccepted, nil)
		return err
	})
	if err != nil {
		return err
	}

	s.notifier.Deliver(note)
	metrics.GraphTransitions.WithLabelValues("accepted").Inc()
	logger.Info("关注申请已接受", zap.Uint("request_id", requestID), zap.Uint("user_id", respondingUserID))
	return nil
}

// RejectFollowRequest 拒绝关注申请，不改变关注边和计数
func (s *GraphService) RejectFollowRequest(requestID, respondingUserID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fr, err := loadPendingRequest(tx, requestID, respondingUserID)
		if err != nil {
			return err
		}
		resolved, err := repository.NewFollowRequestRepository(tx).Resolve(fr.ID, model.FollowRequestRejected)
		if err != nil {
			return err
		}
		if !resolved {
			return fmt.Errorf("follow request %w", ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.GraphTransitions.WithLabelValues("rejected").Inc()
	logger.Info("关注申请已拒绝", zap.Uint("request_id", requestID), zap.Uint("user_id", respondingUserID))
	return nil
}

// ToggleBlock 拉黑/取消拉黑
// 拉黑时删除双方之间任意方向的关注边（同步递减计数），并拒绝未处理的关注申请
func (s *GraphService) ToggleBlock(actorID, targetID uint) (BlockStatus, error) {
	if actorID == targetID {
		return "", ErrSelfReference
	}

	var status BlockStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, target, err := loadPair(tx, actorID, targetID)
		if err != nil {
			return err
		}
		blocks := repository.NewBlockRepository(tx)
		removed, err := blocks.Delete(actorID, targetID)
		if err != nil {
			return err
		}
		if removed {
			status = StatusUnblocked
			return nil
		}

		if _, err := blocks.Create(actorID, targetID); err != nil {
			return err
		}
		if _, err := unfollow(tx, actor, target); err != nil {
			return err
		}
		if _, err := unfollow(tx, target, actor); err != nil {
			return err
		}
		if err := repository.NewFollowRequestRepository(tx).RejectPendingBetween(actorID, targetID); err != nil {
			return err
		}
		status = StatusBlocked
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.GraphTransitions.WithLabelValues(string(status)).Inc()
	logger.Info("拉黑状态切换",
		zap.Uint("actor_id", actorID),
		zap.Uint("target_id", targetID),
		zap.String("status", string(status)),
	)
	return status, nil
}

// CanViewContent 公开账号、本人、已关注者可见；匿名访问者（viewerID 为 nil）只能看公开账号
func (s *GraphService) CanViewContent(ownerID uint, viewerID *uint) (bool, error) {
	owner, err := repository.NewUserRepository(s.db).GetByID(ownerID)
	if err != nil {
		return false, notFound(err, "user")
	}
	return canView(s.db, owner, viewerID)
}

func canView(db *gorm.DB, owner *model.User, viewerID *uint) (bool, error) {
	if !owner.PrivateAccount {
		return true, nil
	}
	if viewerID == nil {
		return false, nil
	}
	if *viewerID == owner.ID {
		return true, nil
	}
	return repository.NewFollowRepository(db).Exists(*viewerID, owner.ID)
}

// IsFollowing follower 是否关注了 following
func (s *GraphService) IsFollowing(followerID, followingID uint) (bool, error) {
	return repository.NewFollowRepository(s.db).Exists(followerID, followingID)
}

// BlockState 当前用户是否拉黑了对方、是否被对方拉黑
func (s *GraphService) BlockState(actorID, targetID uint) (isBlocked, isBlockedBy bool, err error) {
	if exists, err := repository.NewUserRepository(s.db).Exists(targetID); err != nil {
		return false, false, err
	} else if !exists {
		return false, false, fmt.Errorf("user %w", ErrNotFound)
	}
	blocks := repository.NewBlockRepository(s.db)
	if isBlocked, err = blocks.Exists(actorID, targetID); err != nil {
		return false, false, err
	}
	if isBlockedBy, err = blocks.Exists(targetID, actorID); err != nil {
		return false, false, err
	}
	return isBlocked, isBlockedBy, nil
}

// ListBlocked 用户拉黑的人
func (s *GraphService) ListBlocked(userID uint) ([]model.User, error) {
	blocks, err := repository.NewBlockRepository(s.db).ListBlocked(userID)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(blocks))
	for _, b := range blocks {
		if b.Blocked != nil {
			users = append(users, *b.Blocked)
		}
	}
	return users, nil
}

// ListPendingRequests 收到的待处理关注申请
func (s *GraphService) ListPendingRequests(userID uint) ([]model.FollowRequest, error) {
	return repository.NewFollowRequestRepository(s.db).ListPending(userID)
}

// TogglePrivateAccount 切换私密账号，返回切换后的状态
func (s *GraphService) TogglePrivateAccount(userID uint) (bool, error) {
	var private bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		u, err := users.GetByID(userID)
		if err != nil {
			return notFound(err, "user")
		}
		private = !u.PrivateAccount
		return users.UpdateFields(userID, map[string]interface{}{"private_account": private})
	})
	if err != nil {
		return false, err
	}
	logger.Info("私密账号设置已切换", zap.Uint("user_id", userID), zap.Bool("private", private))
	return private, nil
}

// ListFollowers 粉丝列表，受可见性限制
func (s *GraphService) ListFollowers(ownerID uint, viewerID *uint, page, pageSize int) ([]model.User, error) {
	if err := s.ensureVisible(ownerID, viewerID); err != nil {
		return nil, err
	}
	return repository.NewFollowRepository(s.db).ListFollowers(ownerID, page, pageSize)
}

// ListFollowing 关注列表，受可见性限制
func (s *GraphService) ListFollowing(ownerID uint, viewerID *uint, page, pageSize int) ([]model.User, error) {
	if err := s.ensureVisible(ownerID, viewerID); err != nil {
		return nil, err
	}
	return repository.NewFollowRepository(s.db).ListFollowing(ownerID, page, pageSize)
}

func (s *GraphService) ensureVisible(ownerID uint, viewerID *uint) error {
	ok, err := s.CanViewContent(ownerID, viewerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
