package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"microblog/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorUsesHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	NotFound(c, "user not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 404, body.Code)
	assert.Equal(t, "user not found", body.Message)
}

func TestFilterUserInfoHidesEmail(t *testing.T) {
	u := &model.User{ID: 1, Username: "alice", Email: "a@example.com", PasswordHash: "x"}
	b, err := json.Marshal(FilterUserInfo(u))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "a@example.com")
	assert.Contains(t, string(b), `"username":"alice"`)
}

func TestFilterTweetInfoRendersHashtags(t *testing.T) {
	tw := &model.Tweet{
		ID:        3,
		Content:   "hello #Go",
		Hashtags:  []model.Hashtag{{Name: "go", Slug: "go"}},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	info := FilterTweetInfo(tw)
	assert.Equal(t, []string{"go"}, info.Hashtags)
	assert.Equal(t, `hello <a href="/hashtag/go" class="hashtag">#Go</a>`, info.ContentHTML)
	assert.Equal(t, "2024-01-02 03:04:05", info.CreatedAt)
	assert.Nil(t, info.User)
}

func TestFilterMessageInfoReadState(t *testing.T) {
	now := time.Now()
	assert.False(t, FilterMessageInfo(&model.Message{ID: 1}).IsRead)
	assert.True(t, FilterMessageInfo(&model.Message{ID: 1, ReadAt: &now}).IsRead)
}
