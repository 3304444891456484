package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultChannel = "forumbot:events"

type (
	publisher interface {
		Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
	}

	// Envelope is relayed by the forum's socket layer to the given room.
	Envelope struct {
		Room   string  `json:"room"`
		Event  string  `json:"event"`
		Data   any     `json:"data"`
		Except []int64 `json:"except,omitempty"`
	}

	notifier struct {
		rdb     publisher
		channel string
		log     *logger.Logger
	}
)

func NewNotifier(rdb publisher) *notifier {
	channel := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if channel == "" {
		channel = DefaultChannel
	}

	return &notifier{
		rdb:     rdb,
		channel: channel,
		log:     logger.New("notifier"),
	}
}

func UserRoom(uid int64) string {
	return fmt.Sprintf("uid_%d", uid)
}

func TopicRoom(tid int64) string {
	return fmt.Sprintf("topic_%d", tid)
}

func (n *notifier) Alert(ctx context.Context, uid int64, alert model.Alert) error {
	if alert.Type == "" {
		alert.Type = model.AlertTypeInfo
	}
	return n.NotifyNew(ctx, uid, model.EventAlert, alert)
}

func (n *notifier) NotifyNew(ctx context.Context, uid int64, event string, payload any) error {
	return n.publish(ctx, Envelope{
		Room:  UserRoom(uid),
		Event: event,
		Data:  payload,
	})
}

func (n *notifier) NotifyTopic(ctx context.Context, tid, exceptUid int64, event string, payload any) error {
	envelope := Envelope{
		Room:  TopicRoom(tid),
		Event: event,
		Data:  payload,
	}
	if exceptUid > 0 {
		envelope.Except = []int64{exceptUid}
	}
	return n.publish(ctx, envelope)
}

func (n *notifier) publish(ctx context.Context, envelope Envelope) error {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	receivers, err := n.rdb.Publish(ctx, n.channel, raw).Result()
	if err != nil {
		return fmt.Errorf("publishing %s: %w", envelope.Event, err)
	}

	n.log.Debug().
		Str("room", envelope.Room).
		Str("event", envelope.Event).
		Int64("receivers", receivers).
		Send()

	return nil
}
