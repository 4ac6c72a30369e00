package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 业务错误，handler 层用 errors.Is 映射为HTTP状态码
var (
	ErrNotFound             = errors.New("not found")
	ErrSelfReference        = errors.New("cannot target yourself")
	ErrAlreadyFollowing     = errors.New("already following")
	ErrDuplicateRequest     = errors.New("follow request already pending")
	ErrDuplicateInteraction = errors.New("interaction already exists")
	ErrValidation           = errors.New("validation failed")
	ErrForbidden            = errors.New("forbidden")
	ErrBlocked              = errors.New("blocked")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

// validationError 带说明的校验错误
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound 把 gorm 的记录不存在转换为 ErrNotFound，其他错误原样包装
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
