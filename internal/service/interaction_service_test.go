package service

import (
	"strings"
	"testing"

	"microblog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, author, "hello world")

	res, err := f.interactions.ToggleLike(fan.ID, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusLiked), res.Status)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, int64(1), f.notifications(t, author.ID, model.NotificationLike))

	var note model.Notification
	require.NoError(t, f.db.Where("user_id = ? AND type = ?", author.ID, model.NotificationLike).First(&note).Error)
	require.NotNil(t, note.TweetID)
	assert.Equal(t, tw.ID, *note.TweetID)
	assert.Equal(t, "@fan liked your tweet", note.Message)

	res, err = f.interactions.ToggleLike(fan.ID, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusUnliked), res.Status)
	assert.Equal(t, int64(0), res.Count)
	assert.Equal(t, int64(0), f.reloadTweet(t, tw).LikesCount)
	assert.Equal(t, int64(0), f.countRows(t, &model.Like{}, "tweet_id = ?", tw.ID))
	assert.Equal(t, int64(1), f.notifications(t, author.ID, model.NotificationLike))
}

func TestSelfInteractionsDoNotNotify(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	tw := f.tweet(t, author, "talking to myself")

	_, err := f.interactions.ToggleLike(author.ID, tw.ID)
	require.NoError(t, err)
	_, err = f.interactions.Reply(author.ID, tw.ID, "indeed", nil)
	require.NoError(t, err)

	fresh := f.reloadTweet(t, tw)
	assert.Equal(t, int64(1), fresh.LikesCount)
	assert.Equal(t, int64(1), fresh.RepliesCount)
	assert.Equal(t, int64(0), f.countRows(t, &model.Notification{}, "1 = 1"))
	assert.Equal(t, 0, f.pusher.count(author.ID, EventNotification))
}

func TestReplyIsNotAToggle(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, author, "ask me anything")

	for i := 0; i < 2; i++ {
		res, err := f.interactions.Reply(fan.ID, tw.ID, "  question  ", nil)
		require.NoError(t, err)
		assert.Equal(t, string(StatusReplied), res.Status)
		require.NotNil(t, res.Reply)
		assert.Equal(t, "question", res.Reply.Content)
	}

	assert.Equal(t, int64(2), f.reloadTweet(t, tw).RepliesCount)
	assert.Equal(t, int64(2), f.notifications(t, author.ID, model.NotificationComment))

	replies, err := f.interactions.ListReplies(nil, tw.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 2)

	_, err = f.interactions.Reply(fan.ID, tw.ID, "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.interactions.Reply(fan.ID, tw.ID, strings.Repeat("x", 281), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRetweetRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, author, "share me")

	res, err := f.interactions.Retweet(fan.ID, tw.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, int64(1), f.notifications(t, author.ID, model.NotificationRetweet))

	_, err = f.interactions.Retweet(fan.ID, tw.ID, nil)
	assert.ErrorIs(t, err, ErrDuplicateInteraction)
	assert.Equal(t, int64(1), f.reloadTweet(t, tw).RetweetsCount)

	res, err = f.interactions.Unretweet(fan.ID, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusUnretweeted), res.Status)
	assert.Equal(t, int64(0), res.Count)

	_, err = f.interactions.Unretweet(fan.ID, tw.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(1), f.notifications(t, author.ID, model.NotificationRetweet))
}

func TestRetweetWithComment(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, author, "share me")

	_, err := f.interactions.ApplyInteraction(KindRetweet, fan.ID, tw.ID, WithComment(" so true "))
	require.NoError(t, err)

	var rt model.Retweet
	require.NoError(t, f.db.Where("user_id = ?", fan.ID).First(&rt).Error)
	require.NotNil(t, rt.Comment)
	assert.Equal(t, "so true", *rt.Comment)
}

func TestInteractionOnMissingTweetHasNoEffect(t *testing.T) {
	f := newFixture(t)
	fan := f.user(t, "fan", false)

	_, err := f.interactions.ToggleLike(fan.ID, 777)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.interactions.Reply(fan.ID, 777, "hi", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int64(0), f.countRows(t, &model.Like{}, "1 = 1"))
	assert.Equal(t, int64(0), f.countRows(t, &model.Reply{}, "1 = 1"))
	assert.Equal(t, int64(0), f.countRows(t, &model.Notification{}, "1 = 1"))
}

func TestInteractionsRespectPrivacyAndBlocks(t *testing.T) {
	f := newFixture(t)
	priv := f.user(t, "private", true)
	stranger := f.user(t, "stranger", false)
	author := f.user(t, "author", false)

	secret := f.tweet(t, priv, "members only")
	_, err := f.interactions.ToggleLike(stranger.ID, secret.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.interactions.ListReplies(&stranger.ID, secret.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	open := f.tweet(t, author, "open post")
	_, err = f.interactions.ToggleLike(stranger.ID, open.ID)
	require.NoError(t, err)

	_, err = f.graph.ToggleBlock(author.ID, stranger.ID)
	require.NoError(t, err)
	_, err = f.interactions.Retweet(stranger.ID, open.ID, nil)
	assert.ErrorIs(t, err, ErrBlocked)

	// 已有的点赞仍然可以取消
	res, err := f.interactions.ToggleLike(stranger.ID, open.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusUnliked), res.Status)
}

func TestApplyInteractionDispatch(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	priv := f.user(t, "private", true)
	tw := f.tweet(t, author, "dispatch")

	_, err := f.interactions.ApplyInteraction(KindUnlike, fan.ID, tw.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := f.interactions.ApplyInteraction(KindLike, fan.ID, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusLiked), res.Status)
	res, err = f.interactions.ApplyInteraction(KindUnlike, fan.ID, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusUnliked), res.Status)

	_, err = f.interactions.ApplyInteraction(KindReply, fan.ID, tw.ID)
	assert.ErrorIs(t, err, ErrValidation)
	res, err = f.interactions.ApplyInteraction(KindReply, fan.ID, tw.ID, WithContent("nice"), WithImage("img/1.png"))
	require.NoError(t, err)
	require.NotNil(t, res.Reply.Image)
	assert.Equal(t, "img/1.png", *res.Reply.Image)

	res, err = f.interactions.ApplyInteraction(KindFollow, fan.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusFollowed), res.Status)
	_, err = f.interactions.ApplyInteraction(KindFollow, fan.ID, author.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)

	res, err = f.interactions.ApplyInteraction(KindFollowRequest, fan.ID, priv.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusRequestSent), res.Status)

	var fr model.FollowRequest
	require.NoError(t, f.db.Where("requester_id = ? AND requested_id = ?", fan.ID, priv.ID).First(&fr).Error)
	res, err = f.interactions.ApplyInteraction(KindFollowAccepted, priv.ID, fr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusAccepted), res.Status)
	assert.Equal(t, int64(1), f.reload(t, priv).FollowersCount)
	assert.Equal(t, int64(2), f.reload(t, fan).FollowingCount)

	_, err = f.interactions.ApplyInteraction("poke", fan.ID, tw.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetInteractions(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	fan := f.user(t, "fan", false)
	tw := f.tweet(t, author, "stats")

	_, err := f.interactions.ToggleLike(fan.ID, tw.ID)
	require.NoError(t, err)
	_, err = f.interactions.Retweet(fan.ID, tw.ID, nil)
	require.NoError(t, err)

	got, err := f.interactions.GetInteractions(&fan.ID, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, &Interactions{HasLiked: true, HasRetweeted: true, LikesCount: 1, RetweetsCount: 1}, got)

	got, err = f.interactions.GetInteractions(nil, tw.ID)
	require.NoError(t, err)
	assert.False(t, got.HasLiked)
	assert.Equal(t, int64(1), got.LikesCount)

	_, err = f.interactions.GetInteractions(nil, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInteractionKindClassification(t *testing.T) {
	for _, k := range []InteractionKind{KindLike, KindRetweet, KindReply, KindFollow, KindFollowRequest, KindFollowAccepted} {
		assert.True(t, k.Positive(), k)
		assert.True(t, k.Valid(), k)
	}
	for _, k := range []InteractionKind{KindUnlike, KindUnretweet} {
		assert.False(t, k.Positive(), k)
	}
	assert.False(t, kindUnfollow.Valid())
	assert.True(t, KindReply.TargetsTweet())
	assert.False(t, KindFollow.TargetsTweet())
}
