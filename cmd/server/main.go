package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microblog/config"
	"microblog/internal/handler"
	"microblog/internal/service"
	dbPkg "microblog/pkg/db"
	"microblog/pkg/jwt"
	"microblog/pkg/logger"
	"microblog/pkg/metrics"
	"microblog/pkg/ratelimit"
	"microblog/pkg/redis"
	"microblog/pkg/response"
	"microblog/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== microblog 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.Migrate(db); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 Redis 可选，连接失败时计数与热门话题直接走数据库
	if cfg.Redis.Enabled {
		if err := redis.InitRedis(cfg.Redis); err != nil {
			log.Warn("Redis不可用，降级为仅数据库模式", zap.Error(err))
		} else {
			log.Info("Redis连接成功")
			defer redis.Close()
		}
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	manager := websocket.GetManager()
	notifier := service.NewNotifier(manager)
	graphSvc := service.NewGraphService(db, notifier)
	hashtagSvc := service.NewHashtagService(db, cfg.Content.TrendingSize)
	tweetSvc := service.NewTweetService(db, hashtagSvc, cfg.Content.MaxTweetLength)
	interactionSvc := service.NewInteractionService(db, notifier, graphSvc, cfg.Content.MaxTweetLength)

	handlers := &handler.Handlers{
		User:         handler.NewUserHandler(service.NewUserService(db, jwtSvc), graphSvc, tweetSvc),
		Graph:        handler.NewGraphHandler(graphSvc, interactionSvc),
		Tweet:        handler.NewTweetHandler(tweetSvc, interactionSvc),
		Hashtag:      handler.NewHashtagHandler(hashtagSvc),
		Notification: handler.NewNotificationHandler(service.NewNotificationService(db)),
		Message:      handler.NewMessageHandler(service.NewMessageService(db, manager, cfg.Content.MaxMessageLength)),
		Search:       handler.NewSearchHandler(service.NewSearchService(db)),
	}
	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	// 请求日志（附带 request_id）与 panic 恢复
	router.Use(logger.RequestLogger())
	router.Use(logger.ErrorLoggerMiddleware())
	if cfg.Metrics.Enabled {
		router.Use(metrics.Middleware())
		router.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// 6. 设置基础路由
	setupBasicRoutes(router, manager)

	// 6.1 业务路由
	handler.RegisterRoutes(router.Group("/api/v1"), handlers, handler.Middlewares{
		Auth:      jwtSvc.AuthMiddleware(),
		Optional:  jwtSvc.OptionalAuth(),
		RateLimit: limiter.Middleware(jwt.RateLimitKey),
	})

	// WebSocket 实时推送
	router.GET("/ws", websocket.NewHandler(jwtSvc, cfg.WebSocket, manager).Serve)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 健康检查
func setupBasicRoutes(router *gin.Engine, manager *websocket.Manager) {
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		}
		redisStatus := "disabled"
		if redis.Enabled() {
			redisStatus = "ok"
			if err := redis.HealthCheck(); err != nil {
				redisStatus = "down"
			}
		}
		response.Success(c, gin.H{
			"status":       status,
			"redis":        redisStatus,
			"online_users": manager.OnlineCount(),
			"time":         time.Now().Format(time.RFC3339),
		})
	})
}
