// Package access decides whether a user may use the bot's LLM features.
package access

import (
	"context"
	"fmt"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
)

var log = logger.New("access")

const noticeTitle = "OpenAI"

type Gate struct {
	userService  model.UserService
	groupService model.GroupService
	notifier     model.Notifier
}

func NewGate(userService model.UserService, groupService model.GroupService, notifier model.Notifier) *Gate {
	return &Gate{
		userService:  userService,
		groupService: groupService,
		notifier:     notifier,
	}
}

// CanUse checks the reputation threshold and group allow-list. Unless silent, a denied
// user receives an alert naming the failed requirement.
func (g *Gate) CanUse(ctx context.Context, uid int64, settings model.Settings, silent bool) (bool, error) {
	if settings.MinimumReputation > 0 {
		reputation, err := g.userService.GetReputation(ctx, uid)
		if err != nil {
			return false, fmt.Errorf("get reputation of %d: %w", uid, err)
		}
		if reputation < settings.MinimumReputation {
			g.notify(ctx, uid, silent, fmt.Sprintf(
				"You need at least %d reputation to use this feature.", settings.MinimumReputation,
			))
			return false, nil
		}
	}

	if settings.AllowedGroupsInvalid {
		log.Warn().
			Int64("uid", uid).
			Msg("allowedGroups setting is malformed, denying access")
		g.notify(ctx, uid, silent, "This feature is misconfigured, please contact an administrator.")
		return false, nil
	}

	if len(settings.AllowedGroups) > 0 {
		isMember, err := g.groupService.IsMemberOfAny(ctx, uid, settings.AllowedGroups)
		if err != nil {
			return false, fmt.Errorf("check group membership of %d: %w", uid, err)
		}
		if !isMember {
			g.notify(ctx, uid, silent, "You are not in a group that is allowed to use this feature.")
			return false, nil
		}
	}

	return true, nil
}

func (g *Gate) notify(ctx context.Context, uid int64, silent bool, message string) {
	if silent || g.notifier == nil {
		return
	}

	err := g.notifier.Alert(ctx, uid, model.Alert{
		Type:    model.AlertTypeError,
		Title:   noticeTitle,
		Message: message,
	})
	if err != nil {
		log.Err(err).
			Int64("uid", uid).
			Msg("Failed to send access notice")
	}
}
