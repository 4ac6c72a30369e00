package service

import (
	"testing"

	"microblog/internal/model"
	"microblog/pkg/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccentVariantsShareOneHashtag(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)

	first := f.tweet(t, author, "Bonjour #Café et #café!")
	var tags []model.Hashtag
	require.NoError(t, f.db.Find(&tags).Error)
	require.Len(t, tags, 1)
	assert.Equal(t, "cafe", tags[0].Slug)
	assert.Equal(t, int64(1), tags[0].TweetCount)
	assert.Equal(t, int64(1), f.countRows(t, &model.TweetHashtag{}, "tweet_id = ?", first.ID))

	f.tweet(t, author, "encore un #cafe")
	h, _, err := f.hashtags.GetBySlug("Café", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.TweetCount)
}

func TestCreateReturnsAttachedHashtags(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)

	tw := f.tweet(t, author, "#Go and #rust and #go again")
	slugs := make([]string, 0, len(tw.Hashtags))
	for _, h := range tw.Hashtags {
		slugs = append(slugs, h.Slug)
	}
	assert.ElementsMatch(t, []string{"go", "rust"}, slugs)
}

func TestDeleteTweetDetachesHashtags(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)

	a := f.tweet(t, author, "#golang one")
	f.tweet(t, author, "#golang two")
	require.NoError(t, f.tweets.Delete(author.ID, a.ID))

	h, tweets, err := f.hashtags.GetBySlug("golang", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.TweetCount)
	require.Len(t, tweets, 1)
	assert.Equal(t, "#golang two", tweets[0].Content)
	assert.Equal(t, int64(0), f.countRows(t, &model.TweetHashtag{}, "tweet_id = ?", a.ID))
}

func TestHashtagPageHidesPrivateAuthors(t *testing.T) {
	f := newFixture(t)
	pub := f.user(t, "public", false)
	priv := f.user(t, "private", true)
	f.tweet(t, pub, "#news open")
	f.tweet(t, priv, "#news closed")

	_, tweets, err := f.hashtags.GetBySlug("news", nil)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, pub.ID, tweets[0].UserID)

	_, tweets, err = f.hashtags.GetBySlug("news", &priv.ID)
	require.NoError(t, err)
	assert.Len(t, tweets, 2)

	_, _, err = f.hashtags.GetBySlug("missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHashtagSearch(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	f.tweet(t, author, "#golang #gopher #python")

	got, err := f.hashtags.Search("g")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.hashtags.Search("#go")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.hashtags.Search("py")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "python", got[0].Slug)
}

func TestTrendingFromDatabase(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	f.tweet(t, author, "#go #rust")
	f.tweet(t, author, "#go")
	gone := f.tweet(t, author, "#zig")
	require.NoError(t, f.tweets.Delete(author.ID, gone.ID))

	got, err := f.hashtags.Trending(0)
	require.NoError(t, err)
	assert.Equal(t, []redis.TrendingHashtag{
		{Slug: "go", TweetCount: 2},
		{Slug: "rust", TweetCount: 1},
	}, got)

	got, err = f.hashtags.Trending(1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTrendingCache(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", false)
	f.tweet(t, author, "#go before the cache")

	mr := setupRedis(t)

	// 缓存为空时查库并重建
	got, err := f.hashtags.Trending(0)
	require.NoError(t, err)
	assert.Equal(t, []redis.TrendingHashtag{{Slug: "go", TweetCount: 1}}, got)
	score, err := mr.ZScore(redis.TrendingKey, "go")
	require.NoError(t, err)
	assert.Equal(t, float64(1), score)

	f.tweet(t, author, "#go #rust")
	got, err = f.hashtags.Trending(0)
	require.NoError(t, err)
	assert.Equal(t, []redis.TrendingHashtag{
		{Slug: "go", TweetCount: 2},
		{Slug: "rust", TweetCount: 1},
	}, got)

	tw := f.tweet(t, author, "#elixir")
	require.NoError(t, f.tweets.Delete(author.ID, tw.ID))
	members, err := mr.ZMembers(redis.TrendingKey)
	require.NoError(t, err)
	assert.NotContains(t, members, "elixir")
}
