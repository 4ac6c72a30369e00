package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"microblog/config"
	"microblog/pkg/jwt"
	"microblog/pkg/logger"
	"microblog/pkg/redis"
	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Handler 建立推送连接
type Handler struct {
	jwt     *jwt.JWTService
	cfg     config.WebSocketConfig
	manager *Manager
}

// NewHandler 创建WebSocket处理器
func NewHandler(jwtSvc *jwt.JWTService, cfg config.WebSocketConfig, m *Manager) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * cfg.PingInterval
	}
	return &Handler{jwt: jwtSvc, cfg: cfg, manager: m}
}

// Serve Gin路由处理函数，token 来自 query 参数或 Sec-WebSocket-Protocol
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Unauthorized(c, "token无效")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := NewClient(userID, conn)
	if redis.Enabled() {
		_ = redis.SetOnline(userID)
	}

	done := make(chan struct{})
	go h.writePump(client, done)

	h.manager.AddClient(client)
	logger.Info("WebSocket已连接", zap.Uint("user_id", userID))

	defer func() {
		h.manager.RemoveClient(client)
		if redis.Enabled() {
			_ = redis.SetOffline(userID)
		}
		<-done
		_ = conn.Close()
		logger.Info("WebSocket已断开", zap.Uint("user_id", userID))
	}()

	h.readPump(client)
}

// writePump 发送推送并定时ping，发送通道关闭后退出
func (h *Handler) writePump(client *Client, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				_ = client.Conn.Close()
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = client.Conn.Close()
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				_ = client.Conn.Close()
				return
			}
		}
	}
}

// readPump 读取客户端心跳，超时未收到任何数据则断开
func (h *Handler) readPump(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "heartbeat" && redis.Enabled() {
			_ = redis.RefreshPresence(client.UserID)
		}
	}
}
