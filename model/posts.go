package model

import "context"

type (
	PostService interface {
		// GetPids returns all post ids of a topic in thread order.
		GetPids(ctx context.Context, tid int64) ([]int64, error)
		// GetPostsFields returns the posts for pids in the same order, unknown pids are skipped.
		GetPostsFields(ctx context.Context, pids []int64) ([]Post, error)
	}

	Post struct {
		Pid     int64  `db:"pid" json:"pid"`
		Tid     int64  `db:"tid" json:"tid"`
		Uid     int64  `db:"uid" json:"uid"`
		Content string `db:"content" json:"content"`
		Deleted bool   `db:"deleted" json:"deleted"`

		// DisplayName is resolved from the user store, it is not stored on the post.
		DisplayName string `db:"-" json:"displayname,omitempty"`
	}
)
