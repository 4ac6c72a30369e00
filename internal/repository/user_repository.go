package repository

import (
	"microblog/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据仓储
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository 创建UserRepository，db 可以是事务
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.orm.Create(user).Error
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsernameOrEmail(identifier string) (*model.User, error) {
	var u model.User
	if err := r.orm.Where("username = ? OR email = ?", identifier, identifier).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists 用户是否存在
func (r *UserRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.orm.Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UsernameOrEmailTaken 用户名或邮箱是否已被占用
func (r *UserRepository) UsernameOrEmailTaken(username, email string) (bool, error) {
	var count int64
	err := r.orm.Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// UpdateFields 更新资料字段
func (r *UserRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.orm.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementCounter 计数 +1
func (r *UserRepository) IncrementCounter(id uint, column string) error {
	return incrementColumn(r.orm, &model.User{}, id, column)
}

// DecrementCounter 计数 -1（下限为0）
func (r *UserRepository) DecrementCounter(id uint, column string) (bool, error) {
	return decrementColumn(r.orm, &model.User{}, id, column)
}

// Search 按用户名、全名、简介模糊搜索，粉丝多的在前
func (r *UserRepository) Search(q string, limit int) ([]model.User, error) {
	var users []model.User
	like := "%" + q + "%"
	err := r.orm.
		Where("username LIKE ? OR full_name LIKE ? OR bio LIKE ?", like, like, like).
		Order("followers_count DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ListExcluding 推荐用户：排除给定ID，粉丝多的在前
func (r *UserRepository) ListExcluding(excludeIDs []uint, limit int) ([]model.User, error) {
	var users []model.User
	q := r.orm.Order("followers_count DESC").Order("id ASC").Limit(limit)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	err := q.Find(&users).Error
	return users, err
}
