package handler

import (
	"microblog/internal/service"
	"microblog/pkg/jwt"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

// GraphHandler 关注、关注申请、拉黑
type GraphHandler struct {
	graph        *service.GraphService
	interactions *service.InteractionService
}

func NewGraphHandler(graph *service.GraphService, interactions *service.InteractionService) *GraphHandler {
	return &GraphHandler{graph: graph, interactions: interactions}
}

// RequestFollow 关注；私密账号则发送关注申请
func (h *GraphHandler) RequestFollow(c *gin.Context) {
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	status, err := h.graph.RequestFollow(jwt.GetUserID(c), target)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// ToggleFollow 已关注则取消；未关注时走关注申请流程，私密账号不会被直接关注
func (h *GraphHandler) ToggleFollow(c *gin.Context) {
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor := jwt.GetUserID(c)
	following, err := h.graph.IsFollowing(actor, target)
	if err != nil {
		fail(c, err)
		return
	}
	var status service.FollowStatus
	if following {
		status, err = h.graph.ToggleFollow(actor, target)
	} else {
		status, err = h.graph.RequestFollow(actor, target)
	}
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// ListRequests 待处理的关注申请
func (h *GraphHandler) ListRequests(c *gin.Context) {
	requests, err := h.graph.ListPendingRequests(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterFollowRequests(requests))
}

// AcceptRequest 接受关注申请
func (h *GraphHandler) AcceptRequest(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.interactions.ApplyInteraction(service.KindFollowAccepted, jwt.GetUserID(c), requestID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"status": result.Status})
}

// RejectRequest 拒绝关注申请
func (h *GraphHandler) RejectRequest(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.graph.RejectFollowRequest(requestID, jwt.GetUserID(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"status": "rejected"})
}

// ToggleBlock 拉黑/取消拉黑
func (h *GraphHandler) ToggleBlock(c *gin.Context) {
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	status, err := h.graph.ToggleBlock(jwt.GetUserID(c), target)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// BlockStatus 与目标用户的拉黑关系
func (h *GraphHandler) BlockStatus(c *gin.Context) {
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	isBlocked, isBlockedBy, err := h.graph.BlockState(jwt.GetUserID(c), target)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"is_blocked": isBlocked, "is_blocked_by": isBlockedBy})
}

// ListBlocked 我拉黑的用户
func (h *GraphHandler) ListBlocked(c *gin.Context) {
	users, err := h.graph.ListBlocked(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterUsers(users))
}

// Followers 粉丝列表，私密账号仅粉丝和本人可见
func (h *GraphHandler) Followers(c *gin.Context) {
	owner, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, size := pagination(c)
	users, err := h.graph.ListFollowers(owner, jwt.GetViewerID(c), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterUsers(users))
}

// Following 关注列表
func (h *GraphHandler) Following(c *gin.Context) {
	owner, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, size := pagination(c)
	users, err := h.graph.ListFollowing(owner, jwt.GetViewerID(c), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterUsers(users))
}
