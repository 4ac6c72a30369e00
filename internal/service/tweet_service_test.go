package service

import (
	"strings"
	"testing"

	"microblog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweetLengthBoundary(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"exactly 280", strings.Repeat("a", 280), false},
		{"280 multibyte", strings.Repeat("é", 280), false},
		{"281", strings.Repeat("a", 281), true},
		{"empty", "", true},
		{"whitespace only", " \n\t ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tweets.Create(author.ID, tt.content, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
	assert.Equal(t, int64(2), f.reload(t, author).TweetsCount)
}

func TestCreateTweet(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)

	img := "uploads/cat.png"
	tw, err := f.tweets.Create(author.ID, "  hello  ", &img)
	require.NoError(t, err)
	assert.Equal(t, "hello", tw.Content)
	require.NotNil(t, tw.User)
	assert.Equal(t, "author", tw.User.Username)
	require.NotNil(t, tw.Image)
	assert.Equal(t, img, *tw.Image)

	_, err = f.tweets.Create(999, "orphan", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTweet(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	other := f.user(t, "other", false)
	tw := f.tweet(t, author, "doomed")

	_, err := f.interactions.ToggleLike(other.ID, tw.ID)
	require.NoError(t, err)
	_, err = f.interactions.Reply(other.ID, tw.ID, "rip", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.tweets.Delete(other.ID, tw.ID), ErrForbidden)
	require.NoError(t, f.tweets.Delete(author.ID, tw.ID))
	assert.ErrorIs(t, f.tweets.Delete(author.ID, tw.ID), ErrNotFound)

	assert.Equal(t, int64(0), f.reload(t, author).TweetsCount)
	assert.Equal(t, int64(0), f.countRows(t, &model.Like{}, "tweet_id = ?", tw.ID))
	assert.Equal(t, int64(0), f.countRows(t, &model.Reply{}, "tweet_id = ?", tw.ID))
	assert.Equal(t, int64(0), f.countRows(t, &model.Notification{}, "tweet_id = ?", tw.ID))
}

func TestGetTweetVisibility(t *testing.T) {
	f := newFixture(t)
	priv := f.user(t, "private", true)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, priv, "secret")

	_, err := f.tweets.GetByID(nil, tw.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.tweets.GetByID(&fan.ID, tw.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.tweets.ListByUser(priv.ID, &fan.ID, 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.graph.RequestFollow(fan.ID, priv.ID)
	require.NoError(t, err)
	pending, err := f.graph.ListPendingRequests(priv.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, f.graph.AcceptFollowRequest(pending[0].ID, priv.ID))

	got, err := f.tweets.GetByID(&fan.ID, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Content)
	list, err := f.tweets.ListByUser(priv.ID, &fan.ID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.tweets.GetByID(nil, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	me := f.user(t, "me", false)
	friend := f.user(t, "friend", false)
	stranger := f.user(t, "stranger", false)
	enemy := f.user(t, "enemy", false)

	require.NoError(t, f.graph.Follow(me.ID, friend.ID))
	require.NoError(t, f.graph.Follow(me.ID, enemy.ID))

	f.tweet(t, me, "mine")
	f.tweet(t, friend, "friend's")
	f.tweet(t, stranger, "stranger's")
	f.tweet(t, enemy, "enemy's")

	// 拉黑会同时解除关注
	_, err := f.graph.ToggleBlock(enemy.ID, me.ID)
	require.NoError(t, err)

	feed, err := f.tweets.Feed(me.ID, 1, 20)
	require.NoError(t, err)
	contents := make([]string, 0, len(feed))
	for _, tw := range feed {
		contents = append(contents, tw.Content)
	}
	assert.ElementsMatch(t, []string{"mine", "friend's"}, contents)
}

func TestFeedPagination(t *testing.T) {
	f := newFixture(t)
	me := f.user(t, "me", false)
	for i := 0; i < 5; i++ {
		f.tweet(t, me, strings.Repeat("x", i+1))
	}

	page1, err := f.tweets.Feed(me.ID, 1, 2)
	require.NoError(t, err)
	page3, err := f.tweets.Feed(me.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.Len(t, page3, 1)
}
