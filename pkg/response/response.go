package response

import (
	"net/http"
	"time"

	"microblog/internal/model"
	"microblog/pkg/hashtag"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他与HTTP状态码一致
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

const timeLayout = "2006-01-02 15:04:05"

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Created 201响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error 错误响应，code 同时作为HTTP状态码
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, code int, message string, err error) {
	resp := Response{
		Code:    code,
		Message: message,
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		resp.Error = err.Error()
	}

	c.JSON(code, resp)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// UserInfo 用户公开信息（不含邮箱、密码哈希）
type UserInfo struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	Website        string `json:"website"`
	Avatar         string `json:"avatar"`
	Verified       bool   `json:"verified"`
	PrivateAccount bool   `json:"private_account"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	TweetsCount    int64  `json:"tweets_count"`
	CreatedAt      string `json:"created_at"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:             user.ID,
		Username:       user.Username,
		FullName:       user.FullName,
		Bio:            user.Bio,
		Location:       user.Location,
		Website:        user.Website,
		Avatar:         user.Avatar,
		Verified:       user.Verified,
		PrivateAccount: user.PrivateAccount,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
		TweetsCount:    user.TweetsCount,
		CreatedAt:      user.CreatedAt.Format(timeLayout),
	}
}

// FilterUsers 批量过滤
func FilterUsers(users []model.User) []*UserInfo {
	out := make([]*UserInfo, 0, len(users))
	for i := range users {
		out = append(out, FilterUserInfo(&users[i]))
	}
	return out
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        *UserInfo `json:"user"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
}

// ProfileResponse 用户主页
// Tweets 为空且 CanView=false 表示私密账号内容不可见
type ProfileResponse struct {
	User        *UserInfo    `json:"user"`
	CanView     bool         `json:"can_view"`
	IsFollowing bool         `json:"is_following"`
	IsBlocked   bool         `json:"is_blocked"`
	IsBlockedBy bool         `json:"is_blocked_by"`
	Tweets      []*TweetInfo `json:"tweets,omitempty"`
}

// TweetInfo 推文展示结构，ContentHTML 为带话题链接的内容
type TweetInfo struct {
	ID            uint      `json:"id"`
	Content       string    `json:"content"`
	ContentHTML   string    `json:"content_html"`
	Image         *string   `json:"image,omitempty"`
	LikesCount    int64     `json:"likes_count"`
	RetweetsCount int64     `json:"retweets_count"`
	RepliesCount  int64     `json:"replies_count"`
	Hashtags      []string  `json:"hashtags"`
	User          *UserInfo `json:"user,omitempty"`
	CreatedAt     string    `json:"created_at"`
}

// FilterTweetInfo 转换推文
func FilterTweetInfo(tweet *model.Tweet) *TweetInfo {
	if tweet == nil {
		return nil
	}
	tags := make([]string, 0, len(tweet.Hashtags))
	for _, h := range tweet.Hashtags {
		tags = append(tags, h.Slug)
	}
	return &TweetInfo{
		ID:            tweet.ID,
		Content:       tweet.Content,
		ContentHTML:   hashtag.RenderWithLinks(tweet.Content),
		Image:         tweet.Image,
		LikesCount:    tweet.LikesCount,
		RetweetsCount: tweet.RetweetsCount,
		RepliesCount:  tweet.RepliesCount,
		Hashtags:      tags,
		User:          FilterUserInfo(tweet.User),
		CreatedAt:     tweet.CreatedAt.Format(timeLayout),
	}
}

// FilterTweets 批量转换推文
func FilterTweets(tweets []model.Tweet) []*TweetInfo {
	out := make([]*TweetInfo, 0, len(tweets))
	for i := range tweets {
		out = append(out, FilterTweetInfo(&tweets[i]))
	}
	return out
}

// MessageResponse 私信响应
type MessageResponse struct {
	ID         uint   `json:"id"`
	SenderID   uint   `json:"sender_id"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
	IsRead     bool   `json:"is_read"`
	ReadAt     string `json:"read_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// FilterMessageInfo 过滤消息信息
func FilterMessageInfo(message *model.Message) *MessageResponse {
	if message == nil {
		return nil
	}

	resp := &MessageResponse{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		IsRead:     message.ReadAt != nil,
		CreatedAt:  message.CreatedAt.Format(timeLayout),
	}
	if message.ReadAt != nil {
		resp.ReadAt = message.ReadAt.Format(timeLayout)
	}
	return resp
}

// FilterMessages 批量过滤消息
func FilterMessages(messages []model.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, FilterMessageInfo(&messages[i]))
	}
	return out
}

// NotificationInfo 通知展示结构
type NotificationInfo struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	TweetID   *uint     `json:"tweet_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	FromUser  *UserInfo `json:"from_user,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// FilterNotifications 转换通知列表，触发者只保留公开信息
func FilterNotifications(notes []model.Notification) []*NotificationInfo {
	out := make([]*NotificationInfo, 0, len(notes))
	for i := range notes {
		n := &notes[i]
		out = append(out, &NotificationInfo{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			TweetID:   n.TweetID,
			IsRead:    n.IsRead,
			FromUser:  FilterUserInfo(n.FromUser),
			CreatedAt: n.CreatedAt.Format(timeLayout),
		})
	}
	return out
}

// FollowRequestInfo 待处理的关注申请
type FollowRequestInfo struct {
	ID        uint      `json:"id"`
	Requester *UserInfo `json:"requester"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"created_at"`
}

// FilterFollowRequests 转换关注申请列表
func FilterFollowRequests(requests []model.FollowRequest) []*FollowRequestInfo {
	out := make([]*FollowRequestInfo, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		out = append(out, &FollowRequestInfo{
			ID:        r.ID,
			Requester: FilterUserInfo(r.Requester),
			Status:    string(r.Status),
			CreatedAt: r.CreatedAt.Format(timeLayout),
		})
	}
	return out
}

// ReplyInfo 回复展示结构
type ReplyInfo struct {
	ID        uint      `json:"id"`
	TweetID   uint      `json:"tweet_id"`
	Content   string    `json:"content"`
	Image     *string   `json:"image,omitempty"`
	User      *UserInfo `json:"user,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// FilterReplyInfo 转换回复
func FilterReplyInfo(reply *model.Reply) *ReplyInfo {
	if reply == nil {
		return nil
	}
	return &ReplyInfo{
		ID:        reply.ID,
		TweetID:   reply.TweetID,
		Content:   reply.Content,
		Image:     reply.Image,
		User:      FilterUserInfo(reply.User),
		CreatedAt: reply.CreatedAt.Format(timeLayout),
	}
}

// FilterReplies 批量转换回复
func FilterReplies(replies []model.Reply) []*ReplyInfo {
	out := make([]*ReplyInfo, 0, len(replies))
	for i := range replies {
		out = append(out, FilterReplyInfo(&replies[i]))
	}
	return out
}

// FormatTime 统一时间格式
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}
