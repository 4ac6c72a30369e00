package handler

import (
	"microblog/internal/service"
	"microblog/pkg/jwt"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessageHandler 私信处理器
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler 创建MessageHandler实例
func NewMessageHandler(s *service.MessageService) *MessageHandler {
	return &MessageHandler{service: s}
}

// SendMessage 发送私信
func (h *MessageHandler) SendMessage(c *gin.Context) {
	type req struct {
		ReceiverID uint   `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	message, err := h.service.Send(jwt.GetUserID(c), r.ReceiverID, r.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, response.FilterMessageInfo(message))
}

// GetConversation 与指定用户的全部私信，同时标记对方消息为已读
func (h *MessageHandler) GetConversation(c *gin.Context) {
	otherUserID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	messages, err := h.service.Conversation(jwt.GetUserID(c), otherUserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterMessages(messages))
}

// Poll 拉取 after_id 之后对方发来的新消息
func (h *MessageHandler) Poll(c *gin.Context) {
	otherUserID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	afterID := queryInt(c, "after_id", 0)
	messages, err := h.service.Poll(jwt.GetUserID(c), otherUserID, uint(afterID))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterMessages(messages))
}

// GetConversations 会话列表
func (h *MessageHandler) GetConversations(c *gin.Context) {
	convs, err := h.service.Conversations(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(convs))
	for _, conv := range convs {
		out = append(out, gin.H{
			"user":         response.FilterUserInfo(conv.User),
			"last_message": response.FilterMessageInfo(conv.LastMessage),
			"unread_count": conv.UnreadCount,
		})
	}
	response.Success(c, out)
}

// GetUnreadCount 未读私信数
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"unread_count": count})
}
