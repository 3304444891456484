package sql

import (
	"context"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/jmoiron/sqlx"
)

type postService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewPostService(db *sqlx.DB) *postService {
	return &postService{
		DB:  db,
		log: logger.New("postService"),
	}
}

func (db *postService) GetPids(ctx context.Context, tid int64) ([]int64, error) {
	const query = `SELECT pid FROM posts WHERE tid = ? ORDER BY timestamp, pid`

	var pids []int64
	err := db.SelectContext(ctx, &pids, query, tid)
	return pids, err
}

func (db *postService) GetPostsFields(ctx context.Context, pids []int64) ([]model.Post, error) {
	if len(pids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT pid, tid, uid, content, deleted FROM posts WHERE pid IN (?)`, pids)
	if err != nil {
		return nil, err
	}

	var rows []model.Post
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byPid := make(map[int64]model.Post, len(rows))
	for _, post := range rows {
		byPid[post.Pid] = post
	}

	posts := make([]model.Post, 0, len(rows))
	for _, pid := range pids {
		post, ok := byPid[pid]
		if !ok {
			db.log.Debug().Int64("pid", pid).Msg("Post vanished while fetching")
			continue
		}
		posts = append(posts, post)
	}

	return posts, nil
}
