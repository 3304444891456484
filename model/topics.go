package model

import (
	"context"
	"database/sql"
)

type (
	TopicService interface {
		GetSummary(ctx context.Context, tid int64) (TopicSummary, error)
		// SetSummary only writes when the stored version still equals version.
		// It reports whether the summary was written.
		SetSummary(ctx context.Context, tid int64, summary string, version int64) (bool, error)
		ClearSummaries(ctx context.Context, tids ...int64) error
		CanReply(ctx context.Context, tid int64, uid int64) (bool, error)
		Reply(ctx context.Context, reply TopicReply) (Post, error)
	}

	TopicSummary struct {
		Summary sql.NullString `db:"openai_summary"`
		Version int64          `db:"openai_summary_version"`
	}

	TopicReply struct {
		Tid     int64
		Uid     int64
		Content string
		ToPid   int64
	}
)
