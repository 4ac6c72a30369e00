package handler

import (
	"errors"
	"net/http"

	"microblog/internal/service"
	"microblog/pkg/logger"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf 业务错误对应的HTTP状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSelfReference),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrDuplicateInteraction),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrBlocked):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail 统一的错误响应，未知错误只记录日志不返回细节
func fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		logger.Error("请求处理失败",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		response.ErrorWithDetails(c, code, "internal server error", err)
		return
	}
	response.Error(c, code, err.Error())
}
