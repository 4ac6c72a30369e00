package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"microblog/pkg/logger"
	"microblog/pkg/metrics"
	"microblog/pkg/redis"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event 推送给客户端的事件
// Type: notification / message
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// Client 代表一个WebSocket连接的用户
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient 创建连接客户端
func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

// Manager 管理所有在线用户的WebSocket连接
// 每个用户只保留最新的一条连接；不在线时推送写入Redis离线队列
type Manager struct {
	clients map[uint]*Client
	lock    sync.RWMutex
}

var manager = NewManager()

// NewManager 创建管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[uint]*Client)}
}

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新连接，同一用户的旧连接会被关闭发送通道
// 随后投递Redis中积压的离线推送
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	m.lock.Unlock()

	m.flushOffline(client)
}

// RemoveClient 移除连接（仅当仍是当前连接时）
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.clients[client.UserID]; ok && c == client {
		close(c.Send)
		delete(m.clients, client.UserID)
	}
}

// IsOnline 判断用户是否在本实例在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// OnlineCount 在线连接数
func (m *Manager) OnlineCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

// Push 推送事件给指定用户，返回是否已实时送达
func (m *Manager) Push(userID uint, eventType string, data interface{}) bool {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().Unix()})
	if err != nil {
		logger.Warn("推送事件序列化失败", zap.Uint("user_id", userID), zap.Error(err))
		return false
	}
	return m.SendToUser(userID, payload)
}

// SendToUser 推送原始消息，不在线时存入Redis离线队列
func (m *Manager) SendToUser(userID uint, msg []byte) bool {
	m.lock.RLock()
	client, ok := m.clients[userID]
	if ok {
		select {
		case client.Send <- msg:
			m.lock.RUnlock()
			metrics.PushDeliveries.WithLabelValues("online").Inc()
			return true
		default:
			// 发送缓冲已满，按离线处理
		}
	}
	m.lock.RUnlock()

	m.storeOffline(userID, msg)
	return false
}

func (m *Manager) storeOffline(userID uint, msg []byte) {
	if !redis.Enabled() {
		metrics.PushDeliveries.WithLabelValues("dropped").Inc()
		return
	}
	if err := redis.AddOfflinePush(userID, msg); err != nil {
		logger.Warn("保存离线推送失败", zap.Uint("user_id", userID), zap.Error(err))
		metrics.PushDeliveries.WithLabelValues("dropped").Inc()
		return
	}
	metrics.PushDeliveries.WithLabelValues("offline").Inc()
}

// flushOffline 把离线队列中的推送写入新连接
func (m *Manager) flushOffline(client *Client) {
	if !redis.Enabled() {
		return
	}
	pending, err := redis.TakeOfflinePushes(client.UserID)
	if err != nil {
		logger.Warn("获取离线推送失败", zap.Uint("user_id", client.UserID), zap.Error(err))
		return
	}
	for i, msg := range pending {
		if !m.SendToUser(client.UserID, msg) {
			// 连接已经不可用，剩余的已在 SendToUser 中重新入队
			for _, rest := range pending[i+1:] {
				m.storeOffline(client.UserID, rest)
			}
			return
		}
	}
}
