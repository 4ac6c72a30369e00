package handler

import (
	"microblog/internal/service"
	"microblog/pkg/jwt"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List 最新通知
func (h *NotificationHandler) List(c *gin.Context) {
	notes, err := h.notifications.List(jwt.GetUserID(c), queryInt(c, "limit", 0))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterNotifications(notes))
}

// UnreadCount 未读通知数
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"unread_count": count})
}

// MarkAsRead 标记单条已读
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkAsRead(jwt.GetUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "通知已标记为已读", nil)
}

// MarkAllAsRead 全部已读
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	n, err := h.notifications.MarkAllAsRead(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}
