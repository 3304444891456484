package model

import "context"

type (
	GroupService interface {
		IsMemberOfAny(ctx context.Context, uid int64, groups []string) (bool, error)
		GetNonPrivilegeGroups(ctx context.Context) ([]Group, error)
	}

	Group struct {
		Name        string `db:"name" json:"name"`
		Slug        string `db:"slug" json:"slug"`
		System      bool   `db:"system" json:"system"`
		Private     bool   `db:"private" json:"private"`
		Hidden      bool   `db:"hidden" json:"hidden"`
		MemberCount int64  `db:"member_count" json:"memberCount"`
	}
)
