package service

import (
	"testing"

	"microblog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usernames(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	svc := NewSearchService(f.db)
	viewer := f.user(t, "viewer", false)
	gopher := f.user(t, "gopher", false)
	hidden := f.user(t, "gohidden", true)
	blocker := f.user(t, "goblocker", false)

	f.tweet(t, gopher, "go is fun")
	f.tweet(t, hidden, "go in private")
	f.tweet(t, blocker, "go away")
	_, err := f.graph.ToggleBlock(blocker.ID, viewer.ID)
	require.NoError(t, err)

	res, err := svc.Search(" go ", &viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, "go", res.Query)
	assert.ElementsMatch(t, []string{"gopher", "gohidden"}, usernames(res.Users))
	require.Len(t, res.Tweets, 1)
	assert.Equal(t, "go is fun", res.Tweets[0].Content)

	res, err = svc.Search("go", nil)
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Len(t, res.Tweets, 2)

	res, err = svc.Search("   ", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Users)
	assert.Empty(t, res.Tweets)
}

func TestSuggestedUsers(t *testing.T) {
	f := newFixture(t)
	svc := NewSearchService(f.db)
	me := f.user(t, "me", false)
	followed := f.user(t, "followed", false)
	blocked := f.user(t, "blocked", false)
	f.user(t, "fresh", false)

	require.NoError(t, f.graph.Follow(me.ID, followed.ID))
	_, err := f.graph.ToggleBlock(me.ID, blocked.ID)
	require.NoError(t, err)

	got, err := svc.SuggestedUsers(&me.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, usernames(got))

	got, err = svc.SuggestedUsers(nil, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
