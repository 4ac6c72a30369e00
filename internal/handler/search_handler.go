package handler

import (
	"microblog/internal/service"
	"microblog/pkg/jwt"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search 用户与推文搜索
func (h *SearchHandler) Search(c *gin.Context) {
	res, err := h.search.Search(c.Query("q"), jwt.GetViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"query":  res.Query,
		"users":  response.FilterUsers(res.Users),
		"tweets": response.FilterTweets(res.Tweets),
	})
}

// Suggestions 推荐关注
func (h *SearchHandler) Suggestions(c *gin.Context) {
	users, err := h.search.SuggestedUsers(jwt.GetViewerID(c), queryInt(c, "limit", 0))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterUsers(users))
}
