package summary

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/model"
)

type fakePosts struct {
	posts []model.Post
}

func (f *fakePosts) GetPids(context.Context, int64) ([]int64, error) {
	pids := make([]int64, 0, len(f.posts))
	for _, post := range f.posts {
		pids = append(pids, post.Pid)
	}
	return pids, nil
}

func (f *fakePosts) GetPostsFields(_ context.Context, pids []int64) ([]model.Post, error) {
	byPid := make(map[int64]model.Post, len(f.posts))
	for _, post := range f.posts {
		byPid[post.Pid] = post
	}

	out := make([]model.Post, 0, len(pids))
	for _, pid := range pids {
		if post, ok := byPid[pid]; ok {
			out = append(out, post)
		}
	}
	return out, nil
}

type fakeUsers struct {
	model.UserService
	mu        sync.Mutex
	names     map[int64]string
	requested [][]int64
}

func (f *fakeUsers) GetDisplayNames(_ context.Context, uids []int64) (map[int64]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requested = append(f.requested, uids)
	out := make(map[int64]string, len(uids))
	for _, uid := range uids {
		if name, ok := f.names[uid]; ok {
			out[uid] = name
		}
	}
	return out, nil
}

// fakeLLM answers map calls with "summary of <first pid>" taken from the first
// "#<pid>" marker in the prompt and the reduce call with "final".
type fakeLLM struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest
	jitter   bool
	failOn   string
	err      error
}

func (f *fakeLLM) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	if f.jitter {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	user := req.Messages[len(req.Messages)-1].Content
	if f.failOn != "" && strings.Contains(user, f.failOn) {
		return "", f.err
	}

	if req.Messages[0].Content == reduceSystemPrompt {
		return "  final  ", nil
	}

	idx := strings.Index(user, "#")
	if idx < 0 {
		return "summary", nil
	}
	end := strings.IndexAny(user[idx:], " \n")
	if end < 0 {
		end = len(user) - idx
	}
	return fmt.Sprintf("  summary of %s\n", user[idx:idx+end]), nil
}

func (f *fakeLLM) mapCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, req := range f.requests {
		if req.Messages[0].Content == chunkSystemPrompt {
			n++
		}
	}
	return n
}

func (f *fakeLLM) reduceRequests() []llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []llm.CompletionRequest
	for _, req := range f.requests {
		if req.Messages[0].Content == reduceSystemPrompt {
			out = append(out, req)
		}
	}
	return out
}

// makePosts creates n posts whose content starts with "#<pid>" and costs 65 tokens.
func makePosts(n int) []model.Post {
	posts := make([]model.Post, 0, n)
	for i := 1; i <= n; i++ {
		marker := fmt.Sprintf("#%d ", i)
		posts = append(posts, model.Post{
			Pid:     int64(i),
			Tid:     1,
			Uid:     int64(i%7 + 1),
			Content: marker + strings.Repeat("x", 220-len(marker)),
		})
	}
	return posts
}

type fakeTopics struct {
	model.TopicService
	mu      sync.Mutex
	summary sql.NullString
	version int64
	sets    int
	// reads receives a value per GetSummary call when set.
	reads chan struct{}
	// beforeSet runs inside SetSummary before the version check.
	beforeSet func()
}

func (f *fakeTopics) GetSummary(context.Context, int64) (model.TopicSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reads != nil {
		f.reads <- struct{}{}
	}
	return model.TopicSummary{Summary: f.summary, Version: f.version}, nil
}

func (f *fakeTopics) SetSummary(_ context.Context, _ int64, summary string, version int64) (bool, error) {
	if f.beforeSet != nil {
		f.beforeSet()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if version != f.version {
		return false, nil
	}
	f.sets++
	f.summary = sql.NullString{String: summary, Valid: true}
	return true, nil
}

func (f *fakeTopics) ClearSummaries(context.Context, ...int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary = sql.NullString{}
	f.version++
	return nil
}

type fakeSettings struct {
	model.SettingsService
	settings model.Settings
}

func (f *fakeSettings) Get(context.Context) (model.Settings, error) {
	return f.settings, nil
}

type fakeGate struct {
	mu      sync.Mutex
	allowed bool
	silent  []bool
}

func (f *fakeGate) CanUse(_ context.Context, _ int64, _ model.Settings, silent bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.silent = append(f.silent, silent)
	return f.allowed, nil
}

type fakeClients struct {
	mu     sync.Mutex
	client llm.Client
	err    error
	calls  int
}

func (f *fakeClients) Client(context.Context, model.Settings) (llm.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.client, f.err
}

// blockingLLM holds every completion until release is closed or the request
// context ends.
type blockingLLM struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func newBlockingLLM() *blockingLLM {
	return &blockingLLM{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingLLM) Complete(ctx context.Context, _ llm.CompletionRequest) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	select {
	case b.started <- struct{}{}:
	default:
	}

	select {
	case <-b.release:
		return "shared summary", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *blockingLLM) completions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
