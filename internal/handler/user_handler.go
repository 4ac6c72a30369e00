package handler

import (
	"time"

	"microblog/internal/service"
	"microblog/pkg/jwt"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  *service.UserService
	graph  *service.GraphService
	tweets *service.TweetService
}

func NewUserHandler(users *service.UserService, graph *service.GraphService, tweets *service.TweetService) *UserHandler {
	return &UserHandler{users: users, graph: graph, tweets: tweets}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.users.Register(r.Username, r.Email, r.Password)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		Email:       user.Email,
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.users.Login(r.UsernameOrEmail, r.Password)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		Email:       user.Email,
		AccessToken: token,
	})
}

// GetProfile 用户主页：资料、与当前用户的关系，以及可见时的第一页推文
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetProfile(id)
	if err != nil {
		fail(c, err)
		return
	}
	viewer := jwt.GetViewerID(c)

	resp := &response.ProfileResponse{User: response.FilterUserInfo(user)}
	if resp.CanView, err = h.graph.CanViewContent(id, viewer); err != nil {
		fail(c, err)
		return
	}
	if viewer != nil && *viewer != id {
		if resp.IsFollowing, err = h.graph.IsFollowing(*viewer, id); err != nil {
			fail(c, err)
			return
		}
		if resp.IsBlocked, resp.IsBlockedBy, err = h.graph.BlockState(*viewer, id); err != nil {
			fail(c, err)
			return
		}
	}
	if resp.CanView && !resp.IsBlockedBy {
		tweets, err := h.tweets.ListByUser(id, viewer, 1, 20)
		if err != nil {
			fail(c, err)
			return
		}
		resp.Tweets = response.FilterTweets(tweets)
	}
	response.Success(c, resp)
}

// UpdateProfile 修改自己的资料，只更新请求中出现的字段
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	type req struct {
		FullName  *string `json:"full_name"`
		Bio       *string `json:"bio"`
		Location  *string `json:"location"`
		Website   *string `json:"website"`
		Avatar    *string `json:"avatar"`
		BirthDate *string `json:"birth_date"` // 2006-01-02
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	in := service.ProfileUpdate{
		FullName: r.FullName,
		Bio:      r.Bio,
		Location: r.Location,
		Website:  r.Website,
		Avatar:   r.Avatar,
	}
	if r.BirthDate != nil && *r.BirthDate != "" {
		d, err := time.Parse("2006-01-02", *r.BirthDate)
		if err != nil {
			response.BadRequest(c, "birth_date must be YYYY-MM-DD")
			return
		}
		in.BirthDate = &d
	}

	user, err := h.users.UpdateProfile(jwt.GetUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", response.FilterUserInfo(user))
}

// TogglePrivate 切换私密账号
func (h *UserHandler) TogglePrivate(c *gin.Context) {
	private, err := h.graph.TogglePrivateAccount(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"private_account": private})
}
