package sql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
	"github.com/jmoiron/sqlx"
)

type chatService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewChatService(db *sqlx.DB) *chatService {
	return &chatService{
		DB:  db,
		log: logger.New("chatService"),
	}
}

func (db *chatService) GetRoom(ctx context.Context, roomId int64) (model.ChatRoom, error) {
	const query = `SELECT room_id, public, group_chat FROM chat_rooms WHERE room_id = ?`

	var room model.ChatRoom
	err := db.GetContext(ctx, &room, query, roomId)
	if errors.Is(err, sql.ErrNoRows) {
		return room, model.ErrNotFound
	}
	return room, err
}

func (db *chatService) IsUserInRoom(ctx context.Context, uid int64, roomId int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM chat_room_users WHERE room_id = ? AND uid = ?)`

	var inRoom bool
	err := db.GetContext(ctx, &inRoom, query, roomId, uid)
	return inRoom, err
}

func (db *chatService) GetMessageIds(ctx context.Context, roomId int64, uid int64, start int, stop int) ([]int64, error) {
	room, err := db.GetRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}

	limit := stop - start + 1

	var mids []int64
	if room.Public {
		const query = `SELECT mid FROM chat_messages WHERE room_id = ? ORDER BY timestamp, mid LIMIT ? OFFSET ?`
		err = db.SelectContext(ctx, &mids, query, roomId, limit, start)
		return mids, err
	}

	const query = `SELECT m.mid FROM chat_messages m
	JOIN chat_room_users u ON u.room_id = m.room_id AND u.uid = ?
	WHERE m.room_id = ? AND m.timestamp >= u.joined_at
	ORDER BY m.timestamp, m.mid
	LIMIT ? OFFSET ?`
	err = db.SelectContext(ctx, &mids, query, uid, roomId, limit, start)
	return mids, err
}

func (db *chatService) GetMessages(ctx context.Context, mids []int64) ([]model.ChatMessage, error) {
	if len(mids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT mid, room_id, fromuid, content, `system` FROM chat_messages WHERE mid IN (?) ORDER BY timestamp, mid",
		mids,
	)
	if err != nil {
		return nil, err
	}

	var messages []model.ChatMessage
	err = db.SelectContext(ctx, &messages, db.Rebind(query), args...)
	return messages, err
}

func (db *chatService) PostMessage(ctx context.Context, reply model.ChatReply) error {
	const query = `INSERT INTO chat_messages (room_id, fromuid, to_mid, content) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, reply.RoomId, reply.Uid, NewNullInt64(reply.ToMid), reply.Content)
	return err
}
