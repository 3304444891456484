package messaging

import (
	"context"
	"errors"

	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
)

const (
	MaxConversationMessages = 20
	TooLongMessage          = "Conversation too long, please start a new chat"
)

var log = logger.New("messaging")

type (
	Plugin struct {
		settingsService model.SettingsService
		userService     model.UserService
		chatService     model.ChatService
		clients         llm.Provider
	}

	savePayload struct {
		Message *model.ChatMessage `json:"message"`
	}
)

func New(
	settingsService model.SettingsService,
	userService model.UserService,
	chatService model.ChatService,
	clients llm.Provider,
) *Plugin {
	return &Plugin{
		settingsService: settingsService,
		userService:     userService,
		chatService:     chatService,
		clients:         clients,
	}
}

func (p *Plugin) Name() string {
	return "messaging"
}

func (p *Plugin) Handlers() []plugin.Handler {
	return []plugin.Handler{
		&plugin.ActionHandler{
			Trigger:     "action:messaging.save",
			HandlerFunc: p.onMessage,
		},
	}
}

func (p *Plugin) onMessage(c plugin.HookContext) error {
	var payload savePayload
	if err := c.Bind(&payload); err != nil {
		return err
	}

	msg := payload.Message
	if msg == nil || msg.System {
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

	if msg.FromUid == botUid {
		return nil
	}

	room, err := p.chatService.GetRoom(c, msg.RoomId)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	inRoom, err := p.chatService.IsUserInRoom(c, botUid, msg.RoomId)
	if err != nil {
		return err
	}
	if !inRoom {
		return nil
	}

	isPrivate := room.IsPrivate()
	if isPrivate && !settings.EnablePrivateMessages {
		log.Debug().
			Int64("room_id", msg.RoomId).
			Msg("Private messages are disabled")
		return nil
	}

	// group rooms only get an answer when the bot is addressed
	if !isPrivate {
		if _, mentioned := plugin.StripMention(msg.Content, settings.Username); !mentioned {
			return nil
		}
	}

	conversation := []llm.Message{llm.UserMessage(msg.Content)}
	if isPrivate {
		mids, err := p.chatService.GetMessageIds(c, msg.RoomId, botUid, 0, MaxConversationMessages)
		if err != nil {
			return err
		}

		if len(mids) > MaxConversationMessages {
			return p.chatService.PostMessage(c, model.ChatReply{
				RoomId:  msg.RoomId,
				Uid:     botUid,
				Content: TooLongMessage,
				ToMid:   msg.Mid,
			})
		}

		history, err := p.chatService.GetMessages(c, mids)
		if err != nil {
			return err
		}
		conversation = buildConversation(history, botUid)
	}

	client, err := p.clients.Client(c, settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c, settings.RequestTimeout)
	defer cancel()

	response, err := llm.ChatComplete(ctx, client, settings, conversation...)
	if err != nil {
		return err
	}
	if response == "" {
		return nil
	}

	reply := model.ChatReply{
		RoomId:  msg.RoomId,
		Uid:     botUid,
		Content: response,
	}
	if !isPrivate {
		reply.ToMid = msg.Mid
	}

	return p.chatService.PostMessage(ctx, reply)
}

// buildConversation maps the bot's own messages to assistant turns and everything
// else to user turns. System messages are dropped.
func buildConversation(history []model.ChatMessage, botUid int64) []llm.Message {
	conversation := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.System {
			continue
		}
		if m.FromUid == botUid {
			conversation = append(conversation, llm.AssistantMessage(m.Content))
		} else {
			conversation = append(conversation, llm.UserMessage(m.Content))
		}
	}
	return conversation
}
