package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GraphTransitions 关系状态变化次数，action: followed/unfollowed/request_sent/accepted/rejected/blocked/unblocked
	GraphTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_graph_transitions_total",
		Help: "Social graph state transitions",
	}, []string{"action"})
	// Interactions 互动次数，kind 为互动类型
	Interactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_interactions_total",
		Help: "Tweet and user interactions applied",
	}, []string{"kind"})
	// NotificationsEmitted 生成的通知数，type 为通知类型
	NotificationsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_notifications_emitted_total",
		Help: "Notifications written",
	}, []string{"type"})
	// PushDeliveries 实时推送结果，result: online/offline/dropped
	PushDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_push_deliveries_total",
		Help: "Realtime push deliveries by result",
	}, []string{"result"})
	// HashtagsAttached 新关联的话题数
	HashtagsAttached = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "microblog_hashtags_attached_total",
		Help: "Hashtag associations created",
	})
	// HTTPDuration 请求耗时
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "microblog_http_request_duration_seconds",
		Help:    "HTTP request duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(GraphTransitions, Interactions, NotificationsEmitted, PushDeliveries, HashtagsAttached, HTTPDuration)
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware 记录每个请求的耗时
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}
