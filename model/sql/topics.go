package sql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/jmoiron/sqlx"
)

type topicService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewTopicService(db *sqlx.DB) *topicService {
	return &topicService{
		DB:  db,
		log: logger.New("topicService"),
	}
}

func (db *topicService) GetSummary(ctx context.Context, tid int64) (model.TopicSummary, error) {
	const query = `SELECT openai_summary, openai_summary_version FROM topics WHERE tid = ?`

	var summary model.TopicSummary
	err := db.GetContext(ctx, &summary, query, tid)
	if errors.Is(err, sql.ErrNoRows) {
		return summary, model.ErrNotFound
	}
	return summary, err
}

func (db *topicService) SetSummary(ctx context.Context, tid int64, summary string, version int64) (bool, error) {
	const query = `UPDATE topics SET openai_summary = ? WHERE tid = ? AND openai_summary_version = ?`

	res, err := db.ExecContext(ctx, query, summary, tid, version)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (db *topicService) ClearSummaries(ctx context.Context, tids ...int64) error {
	if len(tids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`UPDATE topics SET openai_summary = NULL, openai_summary_version = openai_summary_version + 1 WHERE tid IN (?)`,
		tids,
	)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, db.Rebind(query), args...)
	return err
}

func (db *topicService) clearSummaryTx(ctx context.Context, tx *sqlx.Tx, tid int64) error {
	const query = `UPDATE topics SET openai_summary = NULL, openai_summary_version = openai_summary_version + 1 WHERE tid = ?`
	_, err := tx.ExecContext(ctx, query, tid)
	return err
}

func (db *topicService) CanReply(ctx context.Context, tid int64, uid int64) (bool, error) {
	const query = `SELECT EXISTS(
    SELECT 1 FROM topics t, users u
    WHERE t.tid = ? AND u.uid = ? AND t.locked = false AND t.deleted = false AND u.banned = false
	)`

	var canReply bool
	err := db.GetContext(ctx, &canReply, query, tid, uid)
	return canReply, err
}

// Reply creates a new post in the topic. The cached summary is cleared in the same
// transaction because the post set changes.
func (db *topicService) Reply(ctx context.Context, reply model.TopicReply) (model.Post, error) {
	const query = `INSERT INTO posts (tid, uid, to_pid, content) VALUES (?, ?, ?, ?)`

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Post{}, err
	}

	defer func(tx *sqlx.Tx) {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			db.log.Err(err).Msg("failed to rollback transaction")
		}
	}(tx)

	res, err := tx.ExecContext(ctx, query, reply.Tid, reply.Uid, NewNullInt64(reply.ToPid), reply.Content)
	if err != nil {
		return model.Post{}, err
	}

	pid, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}

	err = db.clearSummaryTx(ctx, tx, reply.Tid)
	if err != nil {
		return model.Post{}, err
	}

	return model.Post{
		Pid:     pid,
		Tid:     reply.Tid,
		Uid:     reply.Uid,
		Content: reply.Content,
	}, tx.Commit()
}
