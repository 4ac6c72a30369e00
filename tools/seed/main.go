// seed 通过HTTP接口并发造数据：注册用户、随机关注、发带话题的推文
// 用法: go run ./tools/seed [用户数] [并发数] [每人推文数] [baseURL]
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

var topics = []string{"golang", "Café", "microblog", "redis", "gin", "weekend", "music", "travel"}

var client = &http.Client{Timeout: 8 * time.Second}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type account struct {
	ID    uint
	Token string
}

// Stats 按接口统计请求结果
type Stats struct {
	mu      sync.Mutex
	ok      map[string]int
	failed  map[string]int
	latency time.Duration
	total   int
}

func newStats() *Stats {
	return &Stats{ok: map[string]int{}, failed: map[string]int{}}
}

func (s *Stats) Add(op string, success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.latency += latency
	if success {
		s.ok[op]++
	} else {
		s.failed[op]++
	}
}

func (s *Stats) Report(took time.Duration) {
	fmt.Println("\n=== 造数结果 ===")
	fmt.Printf("耗时: %v 总请求: %d\n", took, s.total)
	for _, op := range []string{"register", "follow", "tweet", "like"} {
		fmt.Printf("%-9s 成功: %d 失败: %d\n", op, s.ok[op], s.failed[op])
	}
	if s.total > 0 {
		fmt.Printf("平均延迟: %v\n", s.latency/time.Duration(s.total))
	}
}

func call(base, method, path, token string, body interface{}) (int, *envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequest(method, base+"/api/v1"+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, &env, nil
}

func register(base string, i int, runID int64, stats *Stats) (*account, error) {
	name := fmt.Sprintf("seed_%d_%d", runID%100000, i)
	start := time.Now()
	code, env, err := call(base, http.MethodPost, "/users/register", "", map[string]string{
		"username": name,
		"email":    name + "@seed.local",
		"password": "password123",
	})
	stats.Add("register", err == nil && code == http.StatusCreated, time.Since(start))
	if err != nil {
		return nil, err
	}
	if code != http.StatusCreated {
		return nil, fmt.Errorf("register %s: %d %s", name, code, env.Message)
	}
	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return &account{ID: data.User.ID, Token: data.AccessToken}, nil
}

func timed(stats *Stats, op string, want int, f func() (int, *envelope, error)) (*envelope, bool) {
	start := time.Now()
	code, env, err := f()
	ok := err == nil && code == want
	stats.Add(op, ok, time.Since(start))
	return env, ok
}

func intArg(i, def int) int {
	if len(os.Args) > i {
		if v, err := strconv.Atoi(os.Args[i]); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	users := intArg(1, 20)
	concurrency := intArg(2, 5)
	tweetsPerUser := intArg(3, 3)
	base := "http://localhost:8080"
	if len(os.Args) > 4 {
		base = os.Args[4]
	}

	fmt.Println("=== microblog 造数 ===")
	fmt.Printf("目标: %s 用户: %d 并发: %d 每人推文: %d\n", base, users, concurrency, tweetsPerUser)

	stats := newStats()
	runID := time.Now().Unix()
	start := time.Now()

	// 1. 并发注册
	accounts := make([]*account, users)
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			acc, err := register(base, i, runID, stats)
			if err != nil {
				fmt.Println("注册失败:", err)
				return
			}
			accounts[i] = acc
		}(i)
	}
	wg.Wait()

	registered := make([]*account, 0, users)
	for _, a := range accounts {
		if a != nil {
			registered = append(registered, a)
		}
	}
	if len(registered) == 0 {
		fmt.Println("没有注册成功的用户，退出")
		os.Exit(1)
	}

	// 2. 每个用户随机关注、发推、点赞
	var tweetMu sync.Mutex
	tweetIDs := make([]uint, 0, len(registered)*tweetsPerUser)
	for idx, acc := range registered {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, acc *account) {
			defer wg.Done()
			defer func() { <-sem }()
			rng := rand.New(rand.NewSource(runID + int64(idx)))

			for _, j := range rng.Perm(len(registered))[:min(5, len(registered))] {
				target := registered[j]
				if target.ID == acc.ID {
					continue
				}
				timed(stats, "follow", http.StatusOK, func() (int, *envelope, error) {
					return call(base, http.MethodPost, fmt.Sprintf("/users/%d/follow", target.ID), acc.Token, nil)
				})
			}

			for k := 0; k < tweetsPerUser; k++ {
				content := fmt.Sprintf("seed tweet %d from #%s about #%s", k, topics[rng.Intn(len(topics))], topics[rng.Intn(len(topics))])
				env, ok := timed(stats, "tweet", http.StatusCreated, func() (int, *envelope, error) {
					return call(base, http.MethodPost, "/tweets", acc.Token, map[string]string{"content": content})
				})
				if !ok {
					continue
				}
				var tw struct {
					ID uint `json:"id"`
				}
				if json.Unmarshal(env.Data, &tw) == nil {
					tweetMu.Lock()
					tweetIDs = append(tweetIDs, tw.ID)
					tweetMu.Unlock()
				}
			}

			tweetMu.Lock()
			var likes []uint
			for n := 0; n < 3 && len(tweetIDs) > 0; n++ {
				likes = append(likes, tweetIDs[rng.Intn(len(tweetIDs))])
			}
			tweetMu.Unlock()
			for _, id := range likes {
				timed(stats, "like", http.StatusOK, func() (int, *envelope, error) {
					return call(base, http.MethodPost, fmt.Sprintf("/tweets/%d/like", id), acc.Token, nil)
				})
			}
		}(idx, acc)
	}
	wg.Wait()

	stats.Report(time.Since(start))
}
