package service

import (
	"testing"

	"microblog/internal/model"
	"microblog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestFollowPublicCreatesEdge(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", false)

	status, err := f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFollowed, status)

	ok, err := f.graph.IsFollowing(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), f.reload(t, a).FollowingCount)
	assert.Equal(t, int64(0), f.reload(t, a).FollowersCount)
	assert.Equal(t, int64(1), f.reload(t, b).FollowersCount)
	assert.Equal(t, int64(1), f.notifications(t, b.ID, model.NotificationFollow))
	assert.Equal(t, int64(0), f.countRows(t, &model.Notification{}, "user_id = ?", a.ID))
	assert.Equal(t, 1, f.pusher.count(b.ID, EventNotification))

	var note model.Notification
	require.NoError(t, f.db.Where("user_id = ?", b.ID).First(&note).Error)
	assert.Equal(t, a.ID, note.FromUserID)
	assert.Equal(t, "@alice started following you", note.Message)
	assert.Nil(t, note.TweetID)
}

func TestRequestFollowPrivateCreatesPendingRequest(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", true)

	status, err := f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRequestSent, status)

	assert.Equal(t, int64(0), f.followEdges(t, a.ID, b.ID))
	assert.Equal(t, int64(1), f.countRows(t, &model.FollowRequest{},
		"requester_id = ? AND requested_id = ? AND status = ?", a.ID, b.ID, model.FollowRequestPending))
	assert.Equal(t, int64(1), f.notifications(t, b.ID, model.NotificationFollowRequest))
	assert.Equal(t, int64(0), f.reload(t, b).FollowersCount)

	_, err = f.graph.RequestFollow(a.ID, b.ID)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Equal(t, int64(1), f.notifications(t, b.ID, model.NotificationFollowRequest))
}

func TestPendingFollowRequestIsUniquePerPair(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", true)

	_, err := f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)

	// 绕过服务层的检查直接插入，唯一键仍然拒绝第二条 pending
	requests := repository.NewFollowRequestRepository(f.db)
	_, created, err := requests.Create(a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), f.countRows(t, &model.FollowRequest{},
		"requester_id = ? AND requested_id = ? AND status = ?", a.ID, b.ID, model.FollowRequestPending))

	// 反方向是另一对
	_, created, err = requests.Create(b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// 处理后释放唯一键，可以再次申请
	var fr model.FollowRequest
	require.NoError(t, f.db.Where("requester_id = ? AND status = ?", a.ID, model.FollowRequestPending).First(&fr).Error)
	require.NoError(t, f.graph.RejectFollowRequest(fr.ID, b.ID))
	require.NoError(t, f.db.First(&fr, fr.ID).Error)
	assert.Nil(t, fr.PendingKey)

	_, created, err = requests.Create(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestRequestFollowErrors(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", false)

	_, err := f.graph.RequestFollow(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfReference)

	_, err = f.graph.RequestFollow(a.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.graph.RequestFollow(a.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.Equal(t, int64(1), f.reload(t, b).FollowersCount)
}

func TestToggleFollowTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", true)

	status, err := f.graph.ToggleFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFollowed, status)
	assert.Equal(t, int64(1), f.reload(t, b).FollowersCount)

	status, err = f.graph.ToggleFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnfollowed, status)

	assert.Equal(t, int64(0), f.followEdges(t, a.ID, b.ID))
	assert.Equal(t, int64(0), f.reload(t, a).FollowingCount)
	assert.Equal(t, int64(0), f.reload(t, b).FollowersCount)
	// 取消关注不产生通知
	assert.Equal(t, int64(1), f.notifications(t, b.ID, model.NotificationFollow))
}

func TestAliceFollowsThenUnfollowsBob(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", false)
	bob := f.user(t, "bob", false)
	beforeAlice, beforeBob := f.reload(t, alice), f.reload(t, bob)

	status, err := f.graph.RequestFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFollowed, status)

	status, err = f.graph.ToggleFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnfollowed, status)

	assert.Equal(t, beforeAlice.FollowingCount, f.reload(t, alice).FollowingCount)
	assert.Equal(t, beforeBob.FollowersCount, f.reload(t, bob).FollowersCount)
}

func TestToggleFollowFloorsCountersAtZero(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", false)

	_, err := f.graph.ToggleFollow(a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.User{}).Where("id IN ?", []uint{a.ID, b.ID}).
		UpdateColumns(map[string]interface{}{"followers_count": 0, "following_count": 0}).Error)

	status, err := f.graph.ToggleFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnfollowed, status)
	assert.Equal(t, int64(0), f.reload(t, a).FollowingCount)
	assert.Equal(t, int64(0), f.reload(t, b).FollowersCount)
}

func TestAcceptFollowRequest(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", true)
	c := f.user(t, "carol", false)

	_, err := f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)
	pending, err := f.graph.ListPendingRequests(b.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Requester)
	assert.Equal(t, "alice", pending[0].Requester.Username)

	assert.ErrorIs(t, f.graph.AcceptFollowRequest(pending[0].ID, c.ID), ErrNotFound)
	assert.ErrorIs(t, f.graph.AcceptFollowRequest(9999, b.ID), ErrNotFound)

	require.NoError(t, f.graph.AcceptFollowRequest(pending[0].ID, b.ID))

	ok, err := f.graph.IsFollowing(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), f.reload(t, a).FollowingCount)
	assert.Equal(t, int64(1), f.reload(t, b).FollowersCount)
	assert.Equal(t, int64(1), f.notifications(t, a.ID, model.NotificationFollowAccepted))

	var fr model.FollowRequest
	require.NoError(t, f.db.First(&fr, pending[0].ID).Error)
	assert.Equal(t, model.FollowRequestAccepted, fr.Status)

	// 终态，不能再次接受
	assert.ErrorIs(t, f.graph.AcceptFollowRequest(pending[0].ID, b.ID), ErrNotFound)
	assert.Equal(t, int64(1), f.reload(t, b).FollowersCount)

	pending, err = f.graph.ListPendingRequests(b.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRejectFollowRequest(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", true)

	_, err := f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)
	var fr model.FollowRequest
	require.NoError(t, f.db.Where("requester_id = ?", a.ID).First(&fr).Error)

	assert.ErrorIs(t, f.graph.RejectFollowRequest(fr.ID, a.ID), ErrNotFound)
	require.NoError(t, f.graph.RejectFollowRequest(fr.ID, b.ID))
	assert.ErrorIs(t, f.graph.RejectFollowRequest(fr.ID, b.ID), ErrNotFound)
	assert.ErrorIs(t, f.graph.AcceptFollowRequest(fr.ID, b.ID), ErrNotFound)

	assert.Equal(t, int64(0), f.followEdges(t, a.ID, b.ID))
	assert.Equal(t, int64(0), f.reload(t, b).FollowersCount)

	// 被拒绝后可以重新申请
	status, err := f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRequestSent, status)
}

func TestToggleBlockRemovesFollowEdgesBothWays(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", false)
	c := f.user(t, "carol", false)

	_, err := f.graph.RequestFollow(a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.graph.RequestFollow(b.ID, a.ID)
	require.NoError(t, err)
	_, err = f.graph.RequestFollow(c.ID, a.ID)
	require.NoError(t, err)

	status, err := f.graph.ToggleBlock(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, status)

	assert.Equal(t, int64(0), f.followEdges(t, a.ID, b.ID))
	ra, rb := f.reload(t, a), f.reload(t, b)
	assert.Equal(t, int64(0), ra.FollowingCount)
	assert.Equal(t, int64(1), ra.FollowersCount) // carol 仍然关注 alice
	assert.Equal(t, int64(0), rb.FollowingCount)
	assert.Equal(t, int64(0), rb.FollowersCount)

	isBlocked, isBlockedBy, err := f.graph.BlockState(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, isBlocked)
	assert.False(t, isBlockedBy)
	isBlocked, isBlockedBy, err = f.graph.BlockState(b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, isBlocked)
	assert.True(t, isBlockedBy)

	// 拉黑期间任意方向都不能重新关注
	_, err = f.graph.RequestFollow(b.ID, a.ID)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = f.graph.ToggleFollow(a.ID, b.ID)
	assert.ErrorIs(t, err, ErrBlocked)

	blocked, err := f.graph.ListBlocked(a.ID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, b.ID, blocked[0].ID)

	status, err = f.graph.ToggleBlock(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnblocked, status)
	// 取消拉黑不恢复关注
	assert.Equal(t, int64(0), f.followEdges(t, a.ID, b.ID))
	_, err = f.graph.RequestFollow(b.ID, a.ID)
	assert.NoError(t, err)
}

func TestToggleBlockRejectsPendingRequests(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", true)
	b := f.user(t, "bob", false)

	_, err := f.graph.RequestFollow(b.ID, a.ID)
	require.NoError(t, err)
	_, err = f.graph.ToggleBlock(a.ID, b.ID)
	require.NoError(t, err)

	pending, err := f.graph.ListPendingRequests(a.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// 取消拉黑后可以重新申请
	_, err = f.graph.ToggleBlock(a.ID, b.ID)
	require.NoError(t, err)
	status, err := f.graph.RequestFollow(b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRequestSent, status)
}

func TestToggleBlockErrors(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)

	_, err := f.graph.ToggleBlock(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfReference)
	_, err = f.graph.ToggleBlock(a.ID, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanViewContent(t *testing.T) {
	f := newFixture(t)
	pub := f.user(t, "public", false)
	priv := f.user(t, "private", true)
	follower := f.user(t, "follower", false)
	stranger := f.user(t, "stranger", false)

	_, err := f.graph.ToggleFollow(follower.ID, priv.ID)
	require.NoError(t, err)

	cases := []struct {
		name   string
		owner  uint
		viewer *uint
		want   bool
	}{
		{"public anonymous", pub.ID, nil, true},
		{"public stranger", pub.ID, &stranger.ID, true},
		{"private anonymous", priv.ID, nil, false},
		{"private owner", priv.ID, &priv.ID, true},
		{"private stranger", priv.ID, &stranger.ID, false},
		{"private follower", priv.ID, &follower.ID, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.graph.CanViewContent(tc.owner, tc.viewer)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err = f.graph.CanViewContent(4242, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFollowersHonoursVisibility(t *testing.T) {
	f := newFixture(t)
	priv := f.user(t, "private", true)
	follower := f.user(t, "follower", false)
	stranger := f.user(t, "stranger", false)

	_, err := f.graph.ToggleFollow(follower.ID, priv.ID)
	require.NoError(t, err)

	_, err = f.graph.ListFollowers(priv.ID, &stranger.ID, 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)

	users, err := f.graph.ListFollowers(priv.ID, &follower.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, follower.ID, users[0].ID)

	users, err = f.graph.ListFollowing(follower.ID, nil, 1, 20)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, priv.ID, users[0].ID)
}

func TestTogglePrivateAccount(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice", false)

	private, err := f.graph.TogglePrivateAccount(a.ID)
	require.NoError(t, err)
	assert.True(t, private)
	assert.True(t, f.reload(t, a).PrivateAccount)

	private, err = f.graph.TogglePrivateAccount(a.ID)
	require.NoError(t, err)
	assert.False(t, private)

	_, err = f.graph.TogglePrivateAccount(999)
	assert.ErrorIs(t, err, ErrNotFound)
}
