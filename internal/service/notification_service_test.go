package service

import (
	"strconv"
	"testing"

	"microblog/internal/model"
	"microblog/pkg/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsListAndMarkRead(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.db)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	outsider := f.user(t, "outsider", false)
	tw := f.tweet(t, author, "notify me")

	require.NoError(t, f.graph.Follow(fan.ID, author.ID))
	_, err := f.interactions.ToggleLike(fan.ID, tw.ID)
	require.NoError(t, err)

	notes, err := svc.List(author.ID, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, model.NotificationLike, notes[0].Type)
	require.NotNil(t, notes[0].FromUser)
	assert.Equal(t, "fan", notes[0].FromUser.Username)
	assert.Equal(t, 2, f.pusher.count(author.ID, EventNotification))

	assert.ErrorIs(t, svc.MarkAsRead(outsider.ID, notes[0].ID), ErrNotFound)
	require.NoError(t, svc.MarkAsRead(author.ID, notes[0].ID))
	require.NoError(t, svc.MarkAsRead(author.ID, notes[0].ID))

	count, err := svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err := svc.MarkAllAsRead(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	count, err = svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNotificationListLimit(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.db)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, author, "busy")

	for i := 0; i < 3; i++ {
		_, err := f.interactions.Reply(fan.ID, tw.ID, "again", nil)
		require.NoError(t, err)
	}
	notes, err := svc.List(author.ID, 2)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestUnreadCountCache(t *testing.T) {
	f := newFixture(t)
	mr := setupRedis(t)
	svc := NewNotificationService(f.db)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, author, "cache me")

	_, err := f.interactions.ToggleLike(fan.ID, tw.ID)
	require.NoError(t, err)

	// 缓存未命中时查库并回填
	count, err := svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, mr.Exists(redis.UnreadCountKeyPrefix+strconv.FormatUint(uint64(author.ID), 10)))

	_, err = f.interactions.Retweet(fan.ID, tw.ID, nil)
	require.NoError(t, err)
	count, err = svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	notes, err := svc.List(author.ID, 0)
	require.NoError(t, err)
	require.NoError(t, svc.MarkAsRead(author.ID, notes[0].ID))
	count, err = svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.MarkAllAsRead(author.ID)
	require.NoError(t, err)
	count, err = svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeleteTweetResyncsUnreadCount(t *testing.T) {
	f := newFixture(t)
	mr := setupRedis(t)
	svc := NewNotificationService(f.db)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	keep := f.tweet(t, author, "keep me")
	gone := f.tweet(t, author, "delete me")

	_, err := f.interactions.ToggleLike(fan.ID, keep.ID)
	require.NoError(t, err)
	_, err = f.interactions.ToggleLike(fan.ID, gone.ID)
	require.NoError(t, err)

	count, err := svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 通知随推文级联删除，缓存被清除后重新从数据库同步
	require.NoError(t, f.tweets.Delete(author.ID, gone.ID))
	assert.False(t, mr.Exists(redis.UnreadCountKeyPrefix+strconv.FormatUint(uint64(author.ID), 10)))

	count, err = svc.UnreadCount(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
