package handler

import (
	"microblog/internal/service"
	"microblog/pkg/jwt"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

type HashtagHandler struct {
	hashtags *service.HashtagService
}

func NewHashtagHandler(hashtags *service.HashtagService) *HashtagHandler {
	return &HashtagHandler{hashtags: hashtags}
}

// Show 话题页
func (h *HashtagHandler) Show(c *gin.Context) {
	tag, tweets, err := h.hashtags.GetBySlug(c.Param("slug"), jwt.GetViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"hashtag": tag,
		"tweets":  response.FilterTweets(tweets),
	})
}

// Search 话题联想
func (h *HashtagHandler) Search(c *gin.Context) {
	tags, err := h.hashtags.Search(c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tags)
}

// Trending 热门话题
func (h *HashtagHandler) Trending(c *gin.Context) {
	items, err := h.hashtags.Trending(queryInt(c, "limit", 0))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, items)
}
