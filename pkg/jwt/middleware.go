package jwt

import (
	"strconv"
	"strings"

	"microblog/pkg/logger"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名
	ContextUserIDKey = "user_id"
	// ContextUsernameKey 用户名在gin.Context中的键名
	ContextUsernameKey = "username"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
)

// bearerToken 从 Authorization: Bearer <token> 中取出token
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// authenticate 校验token并把用户信息写入Context
func (s *JWTService) authenticate(c *gin.Context, token string) bool {
	claims, err := s.ValidateToken(token)
	if err != nil {
		logger.Warn("JWT验证失败", zap.Error(err), zap.String("path", c.Request.URL.Path))
		return false
	}
	userID, err := claims.UserID()
	if err != nil {
		logger.Warn("JWT Subject 无效", zap.Error(err))
		return false
	}
	c.Set(ContextUserIDKey, userID)
	c.Set(ContextUsernameKey, claims.Username())
	c.Set(ContextClaimsKey, claims)
	return true
}

// AuthMiddleware JWT认证中间件，要求必须携带有效token
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			response.Unauthorized(c, "缺少Authorization请求头")
			c.Abort()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization格式错误，应为Bearer <token>")
			c.Abort()
			return
		}
		if !s.authenticate(c, token) {
			response.Unauthorized(c, "token无效或已过期")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth 可选认证：有合法token时写入用户信息，否则按匿名访问继续
func (s *JWTService) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			s.authenticate(c, token)
		}
		c.Next()
	}
}

// GetUserID 从gin.Context中获取用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := userID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetViewerID 获取当前访问者，匿名时返回nil
func GetViewerID(c *gin.Context) *uint {
	id := GetUserID(c)
	if id == 0 {
		return nil
	}
	return &id
}

// RateLimitKey 限流key：已登录用户按用户ID
func RateLimitKey(c *gin.Context) string {
	if id := GetUserID(c); id != 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return ""
}

// GetUsername 从gin.Context中获取用户名
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsernameKey); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if cl, ok := claims.(*CustomClaims); ok {
			return cl
		}
	}
	return nil
}
