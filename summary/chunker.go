package summary

import (
	"unicode/utf16"

	"github.com/Brawl345/forumbot/model"
)

const DefaultMaxTokensPerChunk = 3000

// EstimateTokens is a rough cost of a post: a quarter of its length plus overhead
// for the author line and separator. Length is counted in UTF-16 code units, the
// way the forum measures post length, so characters outside the BMP count twice.
func EstimateTokens(post model.Post) int {
	return (utf16Len(post.Content)+3)/4 + 10
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// ChunkPosts splits posts into contiguous chunks whose estimated cost stays within
// maxTokensPerChunk. A post that alone exceeds the ceiling forms its own chunk.
func ChunkPosts(posts []model.Post, maxTokensPerChunk int) [][]model.Post {
	if maxTokensPerChunk <= 0 {
		maxTokensPerChunk = DefaultMaxTokensPerChunk
	}

	var chunks [][]model.Post
	var current []model.Post
	tokens := 0

	for _, post := range posts {
		cost := EstimateTokens(post)
		if len(current) > 0 && tokens+cost > maxTokensPerChunk {
			chunks = append(chunks, current)
			current = nil
			tokens = 0
		}
		current = append(current, post)
		tokens += cost
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}
