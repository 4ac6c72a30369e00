package service

import (
	"strconv"
	"sync"
	"testing"

	"microblog/config"
	"microblog/internal/model"
	"microblog/pkg/db"
	"microblog/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB 每个测试一个独立的内存库；单连接保证所有查询看到同一个库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), db.GormConfig(false))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	require.NoError(t, redis.InitRedis(config.RedisConfig{Host: mr.Host(), Port: port, Enabled: true}))
	t.Cleanup(func() { _ = redis.Close() })
	return mr
}

type pushed struct {
	userID    uint
	eventType string
	data      interface{}
}

type recordingPusher struct {
	mu     sync.Mutex
	events []pushed
}

func (p *recordingPusher) Push(userID uint, eventType string, data interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{userID: userID, eventType: eventType, data: data})
	return true
}

func (p *recordingPusher) count(userID uint, eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.userID == userID && e.eventType == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	db           *gorm.DB
	pusher       *recordingPusher
	notifier     *Notifier
	graph        *GraphService
	interactions *InteractionService
	hashtags     *HashtagService
	tweets       *TweetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := newTestDB(t)
	pusher := &recordingPusher{}
	notifier := NewNotifier(pusher)
	graph := NewGraphService(gdb, notifier)
	hashtags := NewHashtagService(gdb, 10)
	return &fixture{
		db:           gdb,
		pusher:       pusher,
		notifier:     notifier,
		graph:        graph,
		interactions: NewInteractionService(gdb, notifier, graph, DefaultMaxTweetLength),
		hashtags:     hashtags,
		tweets:       NewTweetService(gdb, hashtags, DefaultMaxTweetLength),
	}
}

func (f *fixture) user(t *testing.T, username string, private bool) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "x", PrivateAccount: private}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) reload(t *testing.T, u *model.User) *model.User {
	t.Helper()
	var fresh model.User
	require.NoError(t, f.db.First(&fresh, u.ID).Error)
	return &fresh
}

func (f *fixture) tweet(t *testing.T, author *model.User, content string) *model.Tweet {
	t.Helper()
	tw, err := f.tweets.Create(author.ID, content, nil)
	require.NoError(t, err)
	return tw
}

func (f *fixture) reloadTweet(t *testing.T, tw *model.Tweet) *model.Tweet {
	t.Helper()
	var fresh model.Tweet
	require.NoError(t, f.db.First(&fresh, tw.ID).Error)
	return &fresh
}

func (f *fixture) countRows(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

func (f *fixture) notifications(t *testing.T, recipient uint, typ model.NotificationType) int64 {
	t.Helper()
	return f.countRows(t, &model.Notification{}, "user_id = ? AND type = ?", recipient, typ)
}

func (f *fixture) followEdges(t *testing.T, a, b uint) int64 {
	t.Helper()
	return f.countRows(t, &model.Follow{},
		"(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)", a, b, b, a)
}
