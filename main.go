package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Brawl345/forumbot/access"
	"github.com/Brawl345/forumbot/bot"
	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model/redis"
	"github.com/Brawl345/forumbot/model/sql"
	"github.com/Brawl345/forumbot/plugin"
	"github.com/Brawl345/forumbot/plugin/admin"
	"github.com/Brawl345/forumbot/plugin/invalidate"
	"github.com/Brawl345/forumbot/plugin/mention"
	"github.com/Brawl345/forumbot/plugin/messaging"
	"github.com/Brawl345/forumbot/plugin/summarize"
	"github.com/Brawl345/forumbot/summary"
	"github.com/Brawl345/forumbot/utils"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
)

var log = logger.New("main")

func main() {
	versionInfo, err := utils.ReadVersionInfo()
	if err != nil {
		log.Warn().Err(err).Send()
	} else {
		log.Info().Msgf("Forumbot-%s, %v (%s, %s/%s)",
			versionInfo.Revision, versionInfo.LastCommit, versionInfo.GoVersion, versionInfo.GoOS, versionInfo.GoArch)
		if versionInfo.DirtyBuild {
			log.Warn().Msg("This is a dirty build")
		}
	}

	db, err := sql.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Database connection established")

	rdb, err := redis.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	settingsService := sql.NewSettingsService(db)
	postService := sql.NewPostService(db)
	userService := sql.NewUserService(db)
	groupService := sql.NewGroupService(db)
	topicService := sql.NewTopicService(db)
	chatService := sql.NewChatService(db)
	notifier := redis.NewNotifier(rdb)

	factory := llm.NewFactory()
	gate := access.NewGate(userService, groupService, notifier)
	summarizer := summary.NewSummarizer(postService, userService)
	summaryService := summary.NewService(settingsService, topicService, gate, factory, summarizer)

	plugins := []plugin.Plugin{
		admin.New(settingsService, groupService),
		invalidate.New(postService, summaryService),
		mention.New(settingsService, userService, topicService, notifier, factory),
		messaging.New(settingsService, userService, chatService, factory),
		summarize.New(settingsService, summaryService),
	}

	managerService := bot.NewManagerService(os.Getenv("DISABLED_PLUGINS"))
	for i, plg := range plugins {
		log.Info().Msgf("Registering plugin (%d/%d): %s", i+1, len(plugins), plg.Name())
	}
	managerService.SetPlugins(plugins)

	if _, debug := os.LookupEnv("DEBUG"); !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	_, printHooks := os.LookupEnv("PRINT_HOOKS")
	server := bot.NewServer(bot.NewProcessor(managerService), bot.ServerConfig{
		Token:      os.Getenv("HOOK_TOKEN"),
		PrintHooks: printHooks,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx, utils.Getenv("LISTEN_ADDR", ":8080")); err != nil {
		log.Fatal().Err(err).Send()
	}

	log.Info().Msg("Stopped")
}
