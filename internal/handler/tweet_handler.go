package handler

import (
	"microblog/internal/service"
	"microblog/pkg/jwt"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

// TweetHandler 推文及其互动
type TweetHandler struct {
	tweets       *service.TweetService
	interactions *service.InteractionService
}

func NewTweetHandler(tweets *service.TweetService, interactions *service.InteractionService) *TweetHandler {
	return &TweetHandler{tweets: tweets, interactions: interactions}
}

// Create 发推
func (h *TweetHandler) Create(c *gin.Context) {
	type req struct {
		Content string  `json:"content"`
		Image   *string `json:"image"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tweet, err := h.tweets.Create(jwt.GetUserID(c), r.Content, r.Image)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, response.FilterTweetInfo(tweet))
}

// Get 推文详情
func (h *TweetHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tweet, err := h.tweets.GetByID(jwt.GetViewerID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterTweetInfo(tweet))
}

// Delete 删除自己的推文
func (h *TweetHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tweets.Delete(jwt.GetUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "推文已删除", nil)
}

// Feed 时间线
func (h *TweetHandler) Feed(c *gin.Context) {
	page, size := pagination(c)
	tweets, err := h.tweets.Feed(jwt.GetUserID(c), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterTweets(tweets))
}

// ListByUser 用户主页推文
func (h *TweetHandler) ListByUser(c *gin.Context) {
	owner, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, size := pagination(c)
	tweets, err := h.tweets.ListByUser(owner, jwt.GetViewerID(c), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterTweets(tweets))
}

// interact 推文互动的公共流程
func (h *TweetHandler) interact(c *gin.Context, kind service.InteractionKind, opts ...service.InteractionOption) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.interactions.ApplyInteraction(kind, jwt.GetUserID(c), id, opts...)
	if err != nil {
		fail(c, err)
		return
	}
	data := gin.H{"status": result.Status, "count": result.Count}
	if result.Reply != nil {
		data["reply"] = response.FilterReplyInfo(result.Reply)
		response.Created(c, data)
		return
	}
	response.Success(c, data)
}

// Like 点赞/取消点赞
func (h *TweetHandler) Like(c *gin.Context) {
	h.interact(c, service.KindLike)
}

// Retweet 转发，可附言
func (h *TweetHandler) Retweet(c *gin.Context) {
	type req struct {
		Comment string `json:"comment"`
	}
	var r req
	// 允许空body
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&r); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	var opts []service.InteractionOption
	if r.Comment != "" {
		opts = append(opts, service.WithComment(r.Comment))
	}
	h.interact(c, service.KindRetweet, opts...)
}

// Unretweet 取消转发
func (h *TweetHandler) Unretweet(c *gin.Context) {
	h.interact(c, service.KindUnretweet)
}

// Reply 回复
func (h *TweetHandler) Reply(c *gin.Context) {
	type req struct {
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	opts := []service.InteractionOption{service.WithContent(r.Content)}
	if r.Image != "" {
		opts = append(opts, service.WithImage(r.Image))
	}
	h.interact(c, service.KindReply, opts...)
}

// Replies 回复列表
func (h *TweetHandler) Replies(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	replies, err := h.interactions.ListReplies(jwt.GetViewerID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterReplies(replies))
}

// Interactions 当前用户的互动状态与计数
func (h *TweetHandler) Interactions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	got, err := h.interactions.GetInteractions(jwt.GetViewerID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, got)
}
