package handler

import "github.com/gin-gonic/gin"

// Handlers 全部业务处理器
type Handlers struct {
	User         *UserHandler
	Graph        *GraphHandler
	Tweet        *TweetHandler
	Hashtag      *HashtagHandler
	Notification *NotificationHandler
	Message      *MessageHandler
	Search       *SearchHandler
}

// Middlewares 路由用到的中间件
// Auth 要求登录；Optional 有token时识别用户；RateLimit 在 Auth 之后执行，按用户限流写操作
type Middlewares struct {
	Auth      gin.HandlerFunc
	Optional  gin.HandlerFunc
	RateLimit gin.HandlerFunc
}

// RegisterRoutes 绑定 /api/v1 下的业务路由
func RegisterRoutes(v1 *gin.RouterGroup, h *Handlers, mw Middlewares) {
	authed := []gin.HandlerFunc{mw.Auth}
	if mw.RateLimit != nil {
		authed = append(authed, mw.RateLimit)
	}

	// 公开接口（无需认证）
	public := v1.Group("")
	if mw.RateLimit != nil {
		public.Use(mw.RateLimit)
	}
	{
		public.POST("/users/register", h.User.Register)
		public.POST("/users/login", h.User.Login)
	}

	// 匿名可访问，登录后按当前用户过滤可见性
	open := v1.Group("")
	open.Use(mw.Optional)
	{
		open.GET("/users/:id", h.User.GetProfile)
		open.GET("/users/:id/followers", h.Graph.Followers)
		open.GET("/users/:id/following", h.Graph.Following)
		open.GET("/users/:id/tweets", h.Tweet.ListByUser)
		open.GET("/tweets/:id", h.Tweet.Get)
		open.GET("/tweets/:id/replies", h.Tweet.Replies)
		open.GET("/tweets/:id/interactions", h.Tweet.Interactions)
		open.GET("/hashtags/search", h.Hashtag.Search)
		open.GET("/hashtags/trending", h.Hashtag.Trending)
		open.GET("/hashtags/:slug", h.Hashtag.Show)
		open.GET("/search", h.Search.Search)
		open.GET("/suggestions", h.Search.Suggestions)
	}

	// 需要认证的接口
	auth := v1.Group("")
	auth.Use(authed...)
	{
		auth.PUT("/users/profile", h.User.UpdateProfile)
		auth.POST("/users/private/toggle", h.User.TogglePrivate)

		auth.POST("/users/:id/follow", h.Graph.RequestFollow)
		auth.POST("/users/:id/follow/toggle", h.Graph.ToggleFollow)
		auth.GET("/follow-requests", h.Graph.ListRequests)
		auth.POST("/follow-requests/:id/accept", h.Graph.AcceptRequest)
		auth.POST("/follow-requests/:id/reject", h.Graph.RejectRequest)
		auth.POST("/users/:id/block", h.Graph.ToggleBlock)
		auth.GET("/users/:id/block", h.Graph.BlockStatus)
		auth.GET("/blocks", h.Graph.ListBlocked)

		auth.POST("/tweets", h.Tweet.Create)
		auth.DELETE("/tweets/:id", h.Tweet.Delete)
		auth.GET("/feed", h.Tweet.Feed)
		auth.POST("/tweets/:id/like", h.Tweet.Like)
		auth.POST("/tweets/:id/retweet", h.Tweet.Retweet)
		auth.DELETE("/tweets/:id/retweet", h.Tweet.Unretweet)
		auth.POST("/tweets/:id/replies", h.Tweet.Reply)

		auth.GET("/notifications", h.Notification.List)
		auth.GET("/notifications/unread/count", h.Notification.UnreadCount)
		auth.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
		auth.PUT("/notifications/:id/read", h.Notification.MarkAsRead)

		auth.POST("/messages", h.Message.SendMessage)
		auth.GET("/messages/conversations", h.Message.GetConversations)
		auth.GET("/messages/unread/count", h.Message.GetUnreadCount)
		auth.GET("/messages/:user_id", h.Message.GetConversation)
		auth.GET("/messages/:user_id/poll", h.Message.Poll)
	}
}
