package sql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/jmoiron/sqlx"
)

type userService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewUserService(db *sqlx.DB) *userService {
	return &userService{
		DB:  db,
		log: logger.New("userService"),
	}
}

func (db *userService) GetDisplayNames(ctx context.Context, uids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(uids))
	if len(uids) == 0 {
		return names, nil
	}

	query, args, err := sqlx.In(`SELECT uid, username, displayname FROM users WHERE uid IN (?)`, uids)
	if err != nil {
		return nil, err
	}

	var users []model.User
	if err := db.SelectContext(ctx, &users, db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, user := range users {
		names[user.Uid] = user.GetDisplayName()
	}

	for _, uid := range uids {
		if _, ok := names[uid]; !ok {
			names[uid] = model.FormerUser
		}
	}

	return names, nil
}

func (db *userService) GetReputation(ctx context.Context, uid int64) (int64, error) {
	const query = `SELECT reputation FROM users WHERE uid = ?`

	var reputation int64
	err := db.GetContext(ctx, &reputation, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return reputation, err
}

func (db *userService) GetUidByUsername(ctx context.Context, username string) (int64, error) {
	const query = `SELECT uid FROM users WHERE username = ?`

	var uid int64
	err := db.GetContext(ctx, &uid, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrNotFound
	}
	return uid, err
}

func (db *userService) UpdateOnline(ctx context.Context, uid int64) error {
	const query = `UPDATE users SET lastonline = NOW() WHERE uid = ?`
	_, err := db.ExecContext(ctx, query, uid)
	return err
}
