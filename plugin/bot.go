package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Brawl345/forumbot/model"
)

// BotUser resolves the account the bot posts as. ok is false when no username is
// configured or the account does not exist.
func BotUser(ctx context.Context, userService model.UserService, settings model.Settings) (uid int64, ok bool, err error) {
	if settings.Username == "" {
		return 0, false, nil
	}

	uid, err = userService.GetUidByUsername(ctx, settings.Username)
	if errors.Is(err, model.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve bot user %q: %w", settings.Username, err)
	}

	return uid, uid != 0, nil
}

// StripMention removes a leading "@username" and reports whether it was present.
func StripMention(text, username string) (string, bool) {
	if username == "" {
		return text, false
	}
	rest, found := strings.CutPrefix(text, "@"+username)
	return rest, found
}
