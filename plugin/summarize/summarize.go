package summarize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
)

const (
	RequestSummarizeTopic = "plugins.openai.summarizeTopic"
	FilterThreadTools     = "filter:topic.thread_tools"
)

var log = logger.New("summarize")

// Tool is the thread tools entry rendered by the forum theme.
var Tool = ThreadTool{
	Class: "openai-summarize-topic",
	Title: "[[openai:summarize-topic]]",
	Icon:  "fa-robot",
}

type (
	Service interface {
		Summarize(ctx context.Context, tid, uid int64) (string, error)
		CanSummarize(ctx context.Context, uid int64) (bool, error)
	}

	Plugin struct {
		settingsService model.SettingsService
		summaryService  Service
	}

	ThreadTool struct {
		Class string `json:"class"`
		Title string `json:"title"`
		Icon  string `json:"icon"`
	}

	summarizeRequest struct {
		Tid int64 `json:"tid"`
		Uid int64 `json:"uid"`
	}
)

func New(settingsService model.SettingsService, summaryService Service) *Plugin {
	return &Plugin{
		settingsService: settingsService,
		summaryService:  summaryService,
	}
}

func (p *Plugin) Name() string {
	return "summarize"
}

func (p *Plugin) Handlers() []plugin.Handler {
	return []plugin.Handler{
		&plugin.RequestHandler{
			Trigger:     RequestSummarizeTopic,
			HandlerFunc: p.onSummarize,
		},
		&plugin.FilterHandler{
			Trigger:     FilterThreadTools,
			HandlerFunc: p.onThreadTools,
		},
	}
}

func (p *Plugin) onSummarize(c plugin.HookContext) (any, error) {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	if req.Tid <= 0 {
		return nil, fmt.Errorf("%w: invalid tid %d", plugin.ErrBadPayload, req.Tid)
	}

	settings, err := p.settingsService.Get(c)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c, settings.RequestTimeout)
	defer cancel()

	text, err := p.summaryService.Summarize(ctx, req.Tid, req.Uid)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int64("tid", req.Tid).
		Int64("uid", req.Uid).
		Int("length", len(text)).
		Msg("Summarized topic")

	return text, nil
}

// onThreadTools appends the summarize tool to the "tools" list of the
// {topic, uid, tools} payload when the user may use it. Fields of the payload this
// service doesn't know about are passed through untouched.
func (p *Plugin) onThreadTools(c plugin.HookContext) (any, error) {
	var data map[string]json.RawMessage
	if err := c.Bind(&data); err != nil {
		return nil, err
	}

	var uid int64
	if raw, ok := data["uid"]; ok {
		if err := json.Unmarshal(raw, &uid); err != nil {
			return nil, fmt.Errorf("%w: uid: %v", plugin.ErrBadPayload, err)
		}
	}

	allowed, err := p.summaryService.CanSummarize(c, uid)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return data, nil
	}

	var tools []json.RawMessage
	if raw, ok := data["tools"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &tools); err != nil {
			return nil, fmt.Errorf("%w: tools: %v", plugin.ErrBadPayload, err)
		}
	}

	tool, err := json.Marshal(Tool)
	if err != nil {
		return nil, err
	}
	tools = append(tools, tool)

	encoded, err := json.Marshal(tools)
	if err != nil {
		return nil, err
	}
	data["tools"] = encoded

	return data, nil
}
