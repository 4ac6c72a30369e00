package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultMaxMessageLength 私信默认最大字符数
const DefaultMaxMessageLength = 1000

// 会话列表最多扫描的消息条数
const conversationScanLimit = 500

// ConversationSummary 会话摘要
type ConversationSummary struct {
	User        *model.User    `json:"user"`
	LastMessage *model.Message `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

// MessageService 私信服务
type MessageService struct {
	db        *gorm.DB
	pusher    Pusher
	maxLength int
}

// NewMessageService 创建MessageService实例，pusher 可以为 nil
func NewMessageService(db *gorm.DB, pusher Pusher, maxLength int) *MessageService {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	return &MessageService{db: db, pusher: pusher, maxLength: maxLength}
}

// Send 发送私信：接收者必须存在、不能发给自己、双方不能存在拉黑关系
func (s *MessageService) Send(senderID, receiverID uint, content string) (*model.Message, error) {
	if senderID == receiverID {
		return nil, ErrSelfReference
	}
	content, err := normalizeContent(content, s.maxLength)
	if err != nil {
		return nil, err
	}

	message := &model.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, _, err := loadPair(tx, senderID, receiverID); err != nil {
			return err
		}
		if err := ensureNotBlocked(tx, senderID, receiverID); err != nil {
			return err
		}
		return repository.NewMessageRepository(tx).Create(message)
	})
	if err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.Push(receiverID, EventMessage, message)
	}
	logger.Info("私信已发送",
		zap.Uint("sender_id", senderID),
		zap.Uint("receiver_id", receiverID),
		zap.Uint("message_id", message.ID),
	)
	return message, nil
}

// Conversation 打开与对方的会话：返回全部消息，并把对方发来的未读消息标记为已读
func (s *MessageService) Conversation(userID, otherUserID uint) ([]model.Message, error) {
	repo := repository.NewMessageRepository(s.db)
	if err := s.ensureUser(otherUserID); err != nil {
		return nil, err
	}
	messages, err := repo.Conversation(userID, otherUserID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if _, err := repo.MarkConversationAsRead(userID, otherUserID, now); err != nil {
		return nil, err
	}
	for i := range messages {
		if messages[i].ReceiverID == userID && messages[i].ReadAt == nil {
			messages[i].ReadAt = &now
		}
	}
	return messages, nil
}

// Poll 获取对方在 afterID 之后发来的新消息并标记已读
func (s *MessageService) Poll(userID, otherUserID, afterID uint) ([]model.Message, error) {
	repo := repository.NewMessageRepository(s.db)
	if err := s.ensureUser(otherUserID); err != nil {
		return nil, err
	}
	messages, err := repo.IncomingAfter(userID, otherUserID, afterID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return messages, nil
	}
	now := time.Now()
	if _, err := repo.MarkConversationAsRead(userID, otherUserID, now); err != nil {
		return nil, err
	}
	for i := range messages {
		messages[i].ReadAt = &now
	}
	return messages, nil
}

// Conversations 会话列表：每个对方一条，按最后一条消息时间倒序
func (s *MessageService) Conversations(userID uint) ([]ConversationSummary, error) {
	repo := repository.NewMessageRepository(s.db)
	messages, err := repo.ListInvolving(userID, conversationScanLimit)
	if err != nil {
		return nil, err
	}
	unread, err := repo.UnreadCountsBySender(userID)
	if err != nil {
		return nil, err
	}

	latest := make(map[uint]*model.Message)
	order := make([]uint, 0)
	for i := range messages {
		m := &messages[i]
		peer := m.SenderID
		if peer == userID {
			peer = m.ReceiverID
		}
		if _, ok := latest[peer]; ok {
			continue
		}
		latest[peer] = m
		order = append(order, peer)
	}

	users := repository.NewUserRepository(s.db)
	result := make([]ConversationSummary, 0, len(order))
	for _, peer := range order {
		u, err := users.GetByID(peer)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, ConversationSummary{User: u, LastMessage: latest[peer], UnreadCount: unread[peer]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastMessage.CreatedAt.After(result[j].LastMessage.CreatedAt)
	})
	return result, nil
}

// UnreadCount 未读私信数
func (s *MessageService) UnreadCount(userID uint) (int64, error) {
	return repository.NewMessageRepository(s.db).GetUnreadCount(userID)
}

func (s *MessageService) ensureUser(id uint) error {
	exists, err := repository.NewUserRepository(s.db).Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	return nil
}
