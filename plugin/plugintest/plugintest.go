// Package plugintest provides in-memory collaborators for plugin tests.
package plugintest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
)

// Context builds a hook context with v encoded as payload.
func Context(hook string, v any) plugin.HookContext {
	payload, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return plugin.HookContext{
		Context: context.Background(),
		Hook:    hook,
		Payload: payload,
	}
}

// Find returns the handler bound to hook.
func Find(p plugin.Plugin, hook string) plugin.Handler {
	for _, h := range p.Handlers() {
		if h.Hook() == hook {
			return h
		}
	}
	return nil
}

type Settings struct {
	mu    sync.Mutex
	Raw   map[string]string
	Saved []map[string]string
}

func NewSettings(raw map[string]string) *Settings {
	if raw == nil {
		raw = map[string]string{}
	}
	return &Settings{Raw: raw}
}

func (s *Settings) Get(context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, _ := model.ParseSettings(s.Raw)
	return settings, nil
}

func (s *Settings) GetRaw(context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.Raw))
	for k, v := range s.Raw {
		out[k] = v
	}
	return out, nil
}

func (s *Settings) Set(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.Raw[k] = v
	}
	s.Saved = append(s.Saved, values)
	return nil
}

type Users struct {
	model.UserService
	mu        sync.Mutex
	Usernames map[string]int64
	Online    []int64
}

func (u *Users) GetUidByUsername(_ context.Context, username string) (int64, error) {
	if uid, ok := u.Usernames[username]; ok {
		return uid, nil
	}
	return 0, model.ErrNotFound
}

func (u *Users) UpdateOnline(_ context.Context, uid int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Online = append(u.Online, uid)
	return nil
}

type Topics struct {
	model.TopicService
	mu      sync.Mutex
	Locked  map[int64]bool
	Replies []model.TopicReply
	NextPid int64
}

func (t *Topics) CanReply(_ context.Context, tid int64, _ int64) (bool, error) {
	return !t.Locked[tid], nil
}

func (t *Topics) Reply(_ context.Context, reply model.TopicReply) (model.Post, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Replies = append(t.Replies, reply)
	t.NextPid++
	return model.Post{
		Pid:     t.NextPid,
		Tid:     reply.Tid,
		Uid:     reply.Uid,
		Content: reply.Content,
	}, nil
}

type Chats struct {
	mu       sync.Mutex
	Rooms    map[int64]model.ChatRoom
	Members  map[int64][]int64
	Messages []model.ChatMessage
	Posted   []model.ChatReply
}

func (c *Chats) GetRoom(_ context.Context, roomId int64) (model.ChatRoom, error) {
	room, ok := c.Rooms[roomId]
	if !ok {
		return room, model.ErrNotFound
	}
	return room, nil
}

func (c *Chats) IsUserInRoom(_ context.Context, uid int64, roomId int64) (bool, error) {
	for _, member := range c.Members[roomId] {
		if member == uid {
			return true, nil
		}
	}
	return false, nil
}

func (c *Chats) GetMessageIds(_ context.Context, roomId int64, _ int64, start int, stop int) ([]int64, error) {
	var mids []int64
	for _, msg := range c.Messages {
		if msg.RoomId == roomId {
			mids = append(mids, msg.Mid)
		}
	}
	if start >= len(mids) {
		return nil, nil
	}
	end := min(stop+1, len(mids))
	return mids[start:end], nil
}

func (c *Chats) GetMessages(_ context.Context, mids []int64) ([]model.ChatMessage, error) {
	byMid := make(map[int64]model.ChatMessage, len(c.Messages))
	for _, msg := range c.Messages {
		byMid[msg.Mid] = msg
	}
	out := make([]model.ChatMessage, 0, len(mids))
	for _, mid := range mids {
		if msg, ok := byMid[mid]; ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (c *Chats) PostMessage(_ context.Context, reply model.ChatReply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Posted = append(c.Posted, reply)
	return nil
}

type Event struct {
	Uid     int64
	Tid     int64
	Except  int64
	Event   string
	Payload any
}

type Notifier struct {
	mu     sync.Mutex
	Alerts []model.Alert
	Events []Event
}

func (n *Notifier) Alert(_ context.Context, _ int64, alert model.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Alerts = append(n.Alerts, alert)
	return nil
}

func (n *Notifier) NotifyNew(_ context.Context, uid int64, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, Event{Uid: uid, Event: event, Payload: payload})
	return nil
}

func (n *Notifier) NotifyTopic(_ context.Context, tid, exceptUid int64, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, Event{Tid: tid, Except: exceptUid, Event: event, Payload: payload})
	return nil
}

// LLM is both the provider and the client. Response is returned for every request.
type LLM struct {
	mu       sync.Mutex
	Response string
	Err      error
	Requests []llm.CompletionRequest
}

func (l *LLM) Client(_ context.Context, settings model.Settings) (llm.Client, error) {
	if settings.APIKey == "" {
		return nil, llm.ErrNoAPIKey
	}
	return l, nil
}

func (l *LLM) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Requests = append(l.Requests, req)
	return l.Response, l.Err
}

type Posts struct {
	model.PostService
	Tids map[int64]int64
}

func (p *Posts) GetPostsFields(_ context.Context, pids []int64) ([]model.Post, error) {
	var out []model.Post
	for _, pid := range pids {
		if tid, ok := p.Tids[pid]; ok {
			out = append(out, model.Post{Pid: pid, Tid: tid})
		}
	}
	return out, nil
}

type Groups struct {
	model.GroupService
	List []model.Group
}

func (g *Groups) GetNonPrivilegeGroups(context.Context) ([]model.Group, error) {
	return append([]model.Group(nil), g.List...), nil
}
