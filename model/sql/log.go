package sql

import "github.com/Brawl345/forumbot/logger"

var log = logger.New("sql")
