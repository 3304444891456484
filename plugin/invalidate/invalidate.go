package invalidate

import (
	"context"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
	"github.com/Brawl345/forumbot/utils"
)

var log = logger.New("invalidate")

// Hooks after which the stored summary of a topic no longer matches its posts.
var Hooks = []string{
	"action:post.save",
	"action:post.edit",
	"action:post.delete",
	"action:post.restore",
	"action:post.move",
	"action:post.purge",
	"action:post.changeOwner",
	"action:topic.purge",
}

type (
	Clearer interface {
		ClearSummary(ctx context.Context, tids ...int64) error
	}

	Plugin struct {
		postService model.PostService
		clearer     Clearer
	}

	postRef struct {
		Pid int64 `json:"pid"`
		Tid int64 `json:"tid"`
	}

	changePayload struct {
		Post  *postRef  `json:"post"`
		Posts []postRef `json:"posts"`
		Topic *postRef  `json:"topic"`
		// Tid is the destination topic of a moved post.
		Tid int64 `json:"tid"`
	}
)

func New(postService model.PostService, clearer Clearer) *Plugin {
	return &Plugin{
		postService: postService,
		clearer:     clearer,
	}
}

func (p *Plugin) Name() string {
	return "invalidate"
}

func (p *Plugin) Handlers() []plugin.Handler {
	handlers := make([]plugin.Handler, 0, len(Hooks))
	for _, hook := range Hooks {
		handlers = append(handlers, &plugin.ActionHandler{
			Trigger:     hook,
			HandlerFunc: p.onChange,
		})
	}
	return handlers
}

func (p *Plugin) onChange(c plugin.HookContext) error {
	var payload changePayload
	if err := c.Bind(&payload); err != nil {
		return err
	}

	refs := payload.Posts
	if payload.Post != nil {
		refs = append(refs, *payload.Post)
	}
	if payload.Topic != nil {
		refs = append(refs, *payload.Topic)
	}

	tids := []int64{payload.Tid}
	var unresolved []int64
	for _, ref := range refs {
		if ref.Tid != 0 {
			tids = append(tids, ref.Tid)
		} else if ref.Pid != 0 {
			unresolved = append(unresolved, ref.Pid)
		}
	}

	if len(unresolved) > 0 {
		posts, err := p.postService.GetPostsFields(c, unresolved)
		if err != nil {
			return err
		}
		for _, post := range posts {
			tids = append(tids, post.Tid)
		}
	}

	tids = utils.UniqueIDs(tids)
	if len(tids) == 0 {
		log.Debug().
			Str("hook", c.Hook).
			Msg("No topic in payload")
		return nil
	}

	return p.clearer.ClearSummary(c, tids...)
}
