package bot

import "github.com/Brawl345/forumbot/logger"

var log = logger.New("bot")
