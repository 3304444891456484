package summary

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/utils"
	"golang.org/x/sync/singleflight"
)

type (
	Gate interface {
		CanUse(ctx context.Context, uid int64, settings model.Settings, silent bool) (bool, error)
	}

	Service struct {
		settingsService model.SettingsService
		topicService    model.TopicService
		gate            Gate
		clients         llm.Provider
		summarizer      *Summarizer
		flights         singleflight.Group
		log             *logger.Logger
	}
)

func NewService(
	settingsService model.SettingsService,
	topicService model.TopicService,
	gate Gate,
	clients llm.Provider,
	summarizer *Summarizer,
) *Service {
	return &Service{
		settingsService: settingsService,
		topicService:    topicService,
		gate:            gate,
		clients:         clients,
		summarizer:      summarizer,
		log:             logger.New("summaryService"),
	}
}

// Summarize returns the cached summary of a topic or builds and stores a new one.
// Denied users get model.ErrNotAllowed.
func (s *Service) Summarize(ctx context.Context, tid, uid int64) (string, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	allowed, err := s.gate.CanUse(ctx, uid, settings, false)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", model.ErrNotAllowed
	}

	cached, err := s.topicService.GetSummary(ctx, tid)
	if err != nil {
		return "", fmt.Errorf("get summary of topic %d: %w", tid, err)
	}
	if cached.Summary.Valid && cached.Summary.String != "" {
		return cached.Summary.String, nil
	}

	// the flight outlives the caller that started it, others may be waiting on it
	flight := s.flights.DoChan(strconv.FormatInt(tid, 10), func() (any, error) {
		timeout := settings.RequestTimeout
		if timeout <= 0 {
			timeout = model.DefaultRequestTimeout
		}
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return s.build(buildCtx, tid, settings)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			s.log.Debug().
				Int64("tid", tid).
				Msg("Shared summary with a concurrent request")
		}
		return res.Val.(string), nil
	}
}

func (s *Service) build(ctx context.Context, tid int64, settings model.Settings) (string, error) {
	// re-read, a previous flight may have stored the summary after our cache check
	current, err := s.topicService.GetSummary(ctx, tid)
	if err != nil {
		return "", fmt.Errorf("get summary of topic %d: %w", tid, err)
	}
	if current.Summary.Valid && current.Summary.String != "" {
		return current.Summary.String, nil
	}

	client, err := s.clients.Client(ctx, settings)
	if err != nil {
		return "", err
	}

	text, err := s.summarizer.SummarizeThread(ctx, tid, client, settings)
	if err != nil {
		return "", fmt.Errorf("summarize topic %d: %w", tid, err)
	}

	if text == "" {
		return "", nil
	}

	written, err := s.topicService.SetSummary(ctx, tid, text, current.Version)
	if err != nil {
		return "", fmt.Errorf("store summary of topic %d: %w", tid, err)
	}
	if !written {
		s.log.Debug().
			Int64("tid", tid).
			Int64("version", current.Version).
			Msg("Topic changed while summarizing, summary not stored")
	}

	return text, nil
}

// ClearSummary drops the stored summaries of the given topics.
func (s *Service) ClearSummary(ctx context.Context, tids ...int64) error {
	tids = utils.UniqueIDs(tids)
	if len(tids) == 0 {
		return nil
	}

	s.log.Debug().
		Ints64("tids", tids).
		Msg("Clearing summaries")

	return s.topicService.ClearSummaries(ctx, tids...)
}

// CanSummarize reports whether uid may request summaries, without notifying the user.
func (s *Service) CanSummarize(ctx context.Context, uid int64) (bool, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	return s.gate.CanUse(ctx, uid, settings, true)
}
