package service

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/jwt"
	"microblog/pkg/logger"
	"microblog/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// ProfileUpdate 资料修改，nil 字段不修改
type ProfileUpdate struct {
	FullName  *string    `json:"full_name"`
	Bio       *string    `json:"bio"`
	Location  *string    `json:"location"`
	Website   *string    `json:"website"`
	Avatar    *string    `json:"avatar"`
	BirthDate *time.Time `json:"birth_date"`
}

type UserService struct {
	db         *gorm.DB
	jwtService *jwt.JWTService
}

func NewUserService(db *gorm.DB, jwtService *jwt.JWTService) *UserService {
	return &UserService{db: db, jwtService: jwtService}
}

// Register 注册并签发 token
func (s *UserService) Register(username, email, plainPassword string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if !usernamePattern.MatchString(username) {
		return nil, "", validationError("username must be 3-30 letters, digits or underscores")
	}
	if !strings.Contains(email, "@") || len(email) > 128 {
		return nil, "", validationError("invalid email")
	}
	if err := password.Validate(plainPassword); err != nil {
		return nil, "", validationError("%s", err.Error())
	}

	repo := repository.NewUserRepository(s.db)
	taken, err := repo.UsernameOrEmailTaken(username, email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", validationError("username or email already taken")
	}

	// 密码哈希
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := repo.Create(user); err != nil {
		return nil, "", err
	}
	// 默认签发 token
	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login 登录，identifier 可以是用户名或邮箱
func (s *UserService) Login(identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", validationError("identifier and password are required")
	}
	u, err := repository.NewUserRepository(s.db).GetByUsernameOrEmail(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.jwtService.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetProfile 获取用户
func (s *UserService) GetProfile(id uint) (*model.User, error) {
	u, err := repository.NewUserRepository(s.db).GetByID(id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// UpdateProfile 修改资料
func (s *UserService) UpdateProfile(id uint, in ProfileUpdate) (*model.User, error) {
	fields := map[string]interface{}{}
	for _, f := range []struct {
		column string
		value  *string
		max    int
	}{
		{"full_name", in.FullName, 128},
		{"bio", in.Bio, 500},
		{"location", in.Location, 128},
		{"website", in.Website, 255},
		{"avatar", in.Avatar, 255},
	} {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if utf8.RuneCountInString(v) > f.max {
			return nil, validationError("%s exceeds %d characters", f.column, f.max)
		}
		fields[f.column] = v
	}
	if in.BirthDate != nil {
		fields["birth_date"] = *in.BirthDate
	}

	repo := repository.NewUserRepository(s.db)
	if _, err := repo.GetByID(id); err != nil {
		return nil, notFound(err, "user")
	}
	if len(fields) > 0 {
		if err := repo.UpdateFields(id, fields); err != nil {
			return nil, err
		}
	}
	return repo.GetByID(id)
}
