package mention

import (
	"context"
	"strings"

	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
)

var log = logger.New("mention")

type (
	Plugin struct {
		settingsService model.SettingsService
		userService     model.UserService
		topicService    model.TopicService
		notifier        model.Notifier
		clients         llm.Provider
	}

	notifyPayload struct {
		Notification *notification `json:"notification"`
	}

	notification struct {
		Tid      int64  `json:"tid"`
		Pid      int64  `json:"pid"`
		BodyLong string `json:"bodyLong"`
	}

	newPostEvent struct {
		Posts []model.Post `json:"posts"`
	}
)

func New(
	settingsService model.SettingsService,
	userService model.UserService,
	topicService model.TopicService,
	notifier model.Notifier,
	clients llm.Provider,
) *Plugin {
	return &Plugin{
		settingsService: settingsService,
		userService:     userService,
		topicService:    topicService,
		notifier:        notifier,
		clients:         clients,
	}
}

func (p *Plugin) Name() string {
	return "mention"
}

func (p *Plugin) Handlers() []plugin.Handler {
	return []plugin.Handler{
		&plugin.ActionHandler{
			Trigger:     "action:mentions.notify",
			HandlerFunc: p.onMention,
		},
	}
}

func (p *Plugin) onMention(c plugin.HookContext) error {
	var payload notifyPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}

	n := payload.Notification
	if n == nil {
		return nil
	}

	settings, err := p.settingsService.Get(c)
	if err != nil {
		return err
	}

	botUid, ok, err := plugin.BotUser(c, p.userService, settings)
	if err != nil || !ok {
		return err
	}

	if n.Tid == 0 {
		return nil
	}

	message, mentioned := plugin.StripMention(n.BodyLong, settings.Username)
	if !mentioned {
		return nil
	}

	canReply, err := p.topicService.CanReply(c, n.Tid, botUid)
	if err != nil {
		return err
	}
	if !canReply {
		log.Debug().
			Int64("tid", n.Tid).
			Int64("uid", botUid).
			Msg("Bot can't reply to topic")
		return nil
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	client, err := p.clients.Client(c, settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c, settings.RequestTimeout)
	defer cancel()

	response, err := llm.ChatCompleteText(ctx, client, settings, message)
	if err != nil {
		return err
	}
	if response == "" {
		log.Warn().
			Int64("tid", n.Tid).
			Msg("Got an empty completion")
		return nil
	}

	post, err := p.topicService.Reply(ctx, model.TopicReply{
		Tid:     n.Tid,
		Uid:     botUid,
		Content: response,
		ToPid:   n.Pid,
	})
	if err != nil {
		return err
	}

	if err := p.userService.UpdateOnline(ctx, botUid); err != nil {
		log.Err(err).
			Int64("uid", botUid).
			Msg("Failed to update online status")
	}

	return p.notifier.NotifyTopic(ctx, n.Tid, botUid, model.EventNewPost, newPostEvent{
		Posts: []model.Post{post},
	})
}
