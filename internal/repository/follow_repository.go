package repository

import (
	"microblog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository 关注关系仓储
type FollowRepository struct {
	db *gorm.DB
}

// NewFollowRepository 创建FollowRepository
func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Find 查找 follower -> following 的关注边
func (r *FollowRepository) Find(followerID, followingID uint) (*model.Follow, error) {
	var f model.Follow
	err := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Exists 是否已关注
func (r *FollowRepository) Exists(followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// Create 插入关注边，已存在时不做任何事；返回是否新插入
func (r *FollowRepository) Create(followerID, followingID uint) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		Accepted:    true,
	})
	return result.RowsAffected > 0, result.Error
}

// Delete 删除关注边，返回是否确实删除
func (r *FollowRepository) Delete(followerID, followingID uint) (bool, error) {
	result := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&model.Follow{})
	return result.RowsAffected > 0, result.Error
}

// FollowingIDs 用户关注的所有人
func (r *FollowRepository) FollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

// ListFollowers 粉丝列表
func (r *FollowRepository) ListFollowers(userID uint, page, pageSize int) ([]model.User, error) {
	offset, limit := offsetLimit(page, pageSize)
	var users []model.User
	sub := r.db.Model(&model.Follow{}).Select("follower_id").Where("following_id = ?", userID)
	err := r.db.Where("id IN (?)", sub).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// ListFollowing 关注列表
func (r *FollowRepository) ListFollowing(userID uint, page, pageSize int) ([]model.User, error) {
	offset, limit := offsetLimit(page, pageSize)
	var users []model.User
	sub := r.db.Model(&model.Follow{}).Select("following_id").Where("follower_id = ?", userID)
	err := r.db.Where("id IN (?)", sub).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// FollowRequestRepository 关注申请仓储
type FollowRequestRepository struct {
	db *gorm.DB
}

// NewFollowRequestRepository 创建FollowRequestRepository
func NewFollowRequestRepository(db *gorm.DB) *FollowRequestRepository {
	return &FollowRequestRepository{db: db}
}

// GetByID 根据ID获取申请
func (r *FollowRequestRepository) GetByID(id uint) (*model.FollowRequest, error) {
	var fr model.FollowRequest
	if err := r.db.First(&fr, id).Error; err != nil {
		return nil, err
	}
	return &fr, nil
}

// HasPending 是否存在待处理申请
func (r *FollowRequestRepository) HasPending(requesterID, requestedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.FollowRequest{}).
		Where("requester_id = ? AND requested_id = ? AND status = ?", requesterID, requestedID, model.FollowRequestPending).
		Count(&count).Error
	return count > 0, err
}

// Create 创建待处理申请；同一对已有 pending 时不插入，返回 created=false
func (r *FollowRequestRepository) Create(requesterID, requestedID uint) (*model.FollowRequest, bool, error) {
	key := model.FollowRequestPendingKey(requesterID, requestedID)
	fr := &model.FollowRequest{
		RequesterID: requesterID,
		RequestedID: requestedID,
		Status:      model.FollowRequestPending,
		PendingKey:  &key,
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(fr)
	if result.Error != nil {
		return nil, false, result.Error
	}
	return fr, result.RowsAffected > 0, nil
}

// Resolve 把 pending 申请改为终态，返回是否成功（已处理过的申请不会被再次修改）
func (r *FollowRequestRepository) Resolve(id uint, status model.FollowRequestStatus) (bool, error) {
	result := r.db.Model(&model.FollowRequest{}).
		Where("id = ? AND status = ?", id, model.FollowRequestPending).
		Updates(map[string]interface{}{"status": status, "pending_key": nil})
	return result.RowsAffected > 0, result.Error
}

// RejectPendingBetween 拒绝两人之间任意方向的待处理申请
func (r *FollowRequestRepository) RejectPendingBetween(a, b uint) error {
	return r.db.Model(&model.FollowRequest{}).
		Where("status = ? AND ((requester_id = ? AND requested_id = ?) OR (requester_id = ? AND requested_id = ?))",
			model.FollowRequestPending, a, b, b, a).
		Updates(map[string]interface{}{"status": model.FollowRequestRejected, "pending_key": nil}).Error
}

// ListPending 收到的待处理申请，最新的在前
func (r *FollowRequestRepository) ListPending(requestedID uint) ([]model.FollowRequest, error) {
	var list []model.FollowRequest
	err := r.db.Preload("Requester").
		Where("requested_id = ? AND status = ?", requestedID, model.FollowRequestPending).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}
