package sql

import (
	"context"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/jmoiron/sqlx"
)

type groupService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewGroupService(db *sqlx.DB) *groupService {
	return &groupService{
		DB:  db,
		log: logger.New("groupService"),
	}
}

func (db *groupService) IsMemberOfAny(ctx context.Context, uid int64, groups []string) (bool, error) {
	if len(groups) == 0 {
		return false, nil
	}

	query, args, err := sqlx.In(
		`SELECT EXISTS(SELECT 1 FROM user_group_members WHERE uid = ? AND group_name IN (?))`,
		uid,
		groups,
	)
	if err != nil {
		return false, err
	}

	var isMember bool
	err = db.GetContext(ctx, &isMember, db.Rebind(query), args...)
	return isMember, err
}

// GetNonPrivilegeGroups returns all groups that are selectable on the admin page,
// ordered by creation time.
func (db *groupService) GetNonPrivilegeGroups(ctx context.Context) ([]model.Group, error) {
	const query = `SELECT g.name, g.slug, g.system, g.private, g.hidden, COUNT(m.uid) AS member_count
	FROM user_groups g
	LEFT JOIN user_group_members m ON m.group_name = g.name
	WHERE g.privilege_group = false
	GROUP BY g.name, g.slug, g.system, g.private, g.hidden, g.createtime
	ORDER BY g.createtime`

	var groups []model.Group
	err := db.SelectContext(ctx, &groups, query)
	return groups, err
}
