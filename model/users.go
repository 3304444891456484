package model

import (
	"context"
	"database/sql"
)

const FormerUser = "[[global:former-user]]"

type (
	UserService interface {
		GetDisplayNames(ctx context.Context, uids []int64) (map[int64]string, error)
		GetReputation(ctx context.Context, uid int64) (int64, error)
		GetUidByUsername(ctx context.Context, username string) (int64, error)
		UpdateOnline(ctx context.Context, uid int64) error
	}

	User struct {
		Uid         int64          `db:"uid"`
		Username    string         `db:"username"`
		DisplayName sql.NullString `db:"displayname"`
		Reputation  int64          `db:"reputation"`
		Banned      bool           `db:"banned"`
	}
)

func (user *User) GetDisplayName() string {
	if user.DisplayName.Valid && user.DisplayName.String != "" {
		return user.DisplayName.String
	}
	return user.Username
}
