package service

import (
	"strings"

	"microblog/internal/model"
	"microblog/internal/repository"

	"gorm.io/gorm"
)

const (
	searchUserLimit     = 10
	searchTweetLimit    = 20
	defaultSuggestLimit = 3
)

// SearchResult 搜索结果
type SearchResult struct {
	Query  string        `json:"query"`
	Users  []model.User  `json:"users"`
	Tweets []model.Tweet `json:"tweets"`
}

// SearchService 用户与推文搜索
type SearchService struct {
	db *gorm.DB
}

// NewSearchService 创建搜索服务
func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// Search 用户按用户名、全名、简介匹配，推文按内容匹配并过滤掉不可见的
func (s *SearchService) Search(q string, viewerID *uint) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	result := &SearchResult{Query: q, Users: []model.User{}, Tweets: []model.Tweet{}}
	if q == "" {
		return result, nil
	}

	users, err := repository.NewUserRepository(s.db).Search(q, searchUserLimit)
	if err != nil {
		return nil, err
	}
	excluded, err := s.blockRelated(viewerID)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if _, ok := excluded[u.ID]; !ok {
			result.Users = append(result.Users, u)
		}
	}

	tweets, err := repository.NewTweetRepository(s.db).SearchContent(q, searchTweetLimit)
	if err != nil {
		return nil, err
	}
	if result.Tweets, err = visibleTweets(s.db, tweets, viewerID); err != nil {
		return nil, err
	}
	return result, nil
}

// SuggestedUsers 推荐关注：排除自己、已关注和存在拉黑关系的用户
func (s *SearchService) SuggestedUsers(viewerID *uint, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	var exclude []uint
	if viewerID != nil {
		following, err := repository.NewFollowRepository(s.db).FollowingIDs(*viewerID)
		if err != nil {
			return nil, err
		}
		related, err := repository.NewBlockRepository(s.db).RelatedIDs(*viewerID)
		if err != nil {
			return nil, err
		}
		exclude = append(exclude, *viewerID)
		exclude = append(exclude, following...)
		exclude = append(exclude, related...)
	}
	return repository.NewUserRepository(s.db).ListExcluding(exclude, limit)
}

func (s *SearchService) blockRelated(viewerID *uint) (map[uint]struct{}, error) {
	excluded := map[uint]struct{}{}
	if viewerID == nil {
		return excluded, nil
	}
	related, err := repository.NewBlockRepository(s.db).RelatedIDs(*viewerID)
	if err != nil {
		return nil, err
	}
	for _, id := range related {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}
