// Package summary builds and caches AI summaries of forum topics.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/utils"
	"golang.org/x/sync/errgroup"
)

const (
	BatchSize = 500

	chunkSystemPrompt = "You summarize discussion forum threads into concise summaries."
	chunkUserPrompt   = "Summarize the following discussion thread:\n\n"

	reduceSystemPrompt = "You are an assistant that summarizes forum thread summaries into a single cohesive summary."
	reduceUserPrompt   = "Here are summaries of parts of a forum discussion:\n\n%s\n\nPlease write a final, concise summary of the full discussion."

	temperature = 0.5
)

type Summarizer struct {
	postService model.PostService
	userService model.UserService
	log         *logger.Logger

	MaxTokensPerChunk int
}

func NewSummarizer(postService model.PostService, userService model.UserService) *Summarizer {
	return &Summarizer{
		postService:       postService,
		userService:       userService,
		log:               logger.New("summarizer"),
		MaxTokensPerChunk: DefaultMaxTokensPerChunk,
	}
}

func FormatPosts(posts []model.Post) string {
	parts := make([]string, 0, len(posts))
	for _, post := range posts {
		parts = append(parts, fmt.Sprintf("User %s:\n%s", post.DisplayName, post.Content))
	}
	return strings.Join(parts, "\n---\n")
}

// SummarizeThread summarizes every non-deleted post of a topic. Posts are loaded in
// batches, each batch is chunked and the chunks are summarized concurrently. Several
// chunk summaries are merged with one more completion.
func (s *Summarizer) SummarizeThread(ctx context.Context, tid int64, client llm.Client, settings model.Settings) (string, error) {
	pids, err := s.postService.GetPids(ctx, tid)
	if err != nil {
		return "", fmt.Errorf("get pids of topic %d: %w", tid, err)
	}

	names := make(map[int64]string)
	var summaries []string

	for start := 0; start < len(pids); start += BatchSize {
		end := min(start+BatchSize, len(pids))

		batchSummaries, err := s.summarizeBatch(ctx, pids[start:end], names, client, settings)
		if err != nil {
			return "", err
		}
		summaries = append(summaries, batchSummaries...)
	}

	s.log.Debug().
		Int64("tid", tid).
		Int("posts", len(pids)).
		Int("chunks", len(summaries)).
		Msg("Summarized chunks")

	switch len(summaries) {
	case 0:
		return "", nil
	case 1:
		return summaries[0], nil
	}

	joined := strings.Join(summaries, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return "", nil
	}

	final, err := client.Complete(ctx, llm.CompletionRequest{
		Model: settings.Model,
		Messages: []llm.Message{
			llm.SystemMessage(reduceSystemPrompt),
			llm.UserMessage(fmt.Sprintf(reduceUserPrompt, joined)),
		},
		Temperature: llm.Temperature(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("final summary of topic %d: %w", tid, err)
	}

	return strings.TrimSpace(final), nil
}

func (s *Summarizer) summarizeBatch(ctx context.Context, pids []int64, names map[int64]string, client llm.Client, settings model.Settings) ([]string, error) {
	posts, err := s.postService.GetPostsFields(ctx, pids)
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}

	visible := posts[:0:0]
	var missing []int64
	for _, post := range posts {
		if post.Deleted {
			continue
		}
		visible = append(visible, post)
		if _, ok := names[post.Uid]; !ok {
			missing = append(missing, post.Uid)
		}
	}

	missing = utils.UniqueIDs(missing)
	if len(missing) > 0 {
		resolved, err := s.userService.GetDisplayNames(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("get display names: %w", err)
		}
		for _, uid := range missing {
			name, ok := resolved[uid]
			if !ok {
				name = model.FormerUser
			}
			names[uid] = name
		}
	}

	for i := range visible {
		name, ok := names[visible[i].Uid]
		if !ok {
			name = model.FormerUser
		}
		visible[i].DisplayName = name
	}

	chunks := ChunkPosts(visible, s.MaxTokensPerChunk)
	results := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			text, err := summarizeChunk(gctx, chunk, client, settings)
			if err != nil {
				return fmt.Errorf("summarize chunk %d: %w", i, err)
			}
			results[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func summarizeChunk(ctx context.Context, chunk []model.Post, client llm.Client, settings model.Settings) (string, error) {
	text := FormatPosts(chunk)
	if text == "" {
		return "", nil
	}

	response, err := client.Complete(ctx, llm.CompletionRequest{
		Model: settings.Model,
		Messages: []llm.Message{
			llm.SystemMessage(chunkSystemPrompt),
			llm.UserMessage(chunkUserPrompt + text),
		},
		Temperature: llm.Temperature(temperature),
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(response), nil
}
