package repository

import (
	"microblog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository 拉黑关系仓储
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository 创建BlockRepository
func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Exists blocker 是否拉黑了 blocked
func (r *BlockRepository) Exists(blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// EitherBlocks 两人之间任意方向存在拉黑
func (r *BlockRepository) EitherBlocks(a, b uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// Create 插入拉黑记录
func (r *BlockRepository) Create(blockerID, blockedID uint) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
	})
	return result.RowsAffected > 0, result.Error
}

// Delete 取消拉黑
func (r *BlockRepository) Delete(blockerID, blockedID uint) (bool, error) {
	result := r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Delete(&model.Block{})
	return result.RowsAffected > 0, result.Error
}

// ListBlocked 用户拉黑的人
func (r *BlockRepository) ListBlocked(blockerID uint) ([]model.Block, error) {
	var list []model.Block
	err := r.db.Preload("Blocked").
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

// RelatedIDs 与用户存在任意方向拉黑关系的用户ID
func (r *BlockRepository) RelatedIDs(userID uint) ([]uint, error) {
	var blocked, blockers []uint
	if err := r.db.Model(&model.Block{}).Where("blocker_id = ?", userID).Pluck("blocked_id", &blocked).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Block{}).Where("blocked_id = ?", userID).Pluck("blocker_id", &blockers).Error; err != nil {
		return nil, err
	}
	return append(blocked, blockers...), nil
}
