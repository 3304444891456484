package model

import "context"

type (
	ChatService interface {
		GetRoom(ctx context.Context, roomId int64) (ChatRoom, error)
		IsUserInRoom(ctx context.Context, uid int64, roomId int64) (bool, error)
		// GetMessageIds returns message ids of a room from start to stop (inclusive).
		// In non-public rooms only messages sent after uid joined are visible.
		GetMessageIds(ctx context.Context, roomId int64, uid int64, start int, stop int) ([]int64, error)
		GetMessages(ctx context.Context, mids []int64) ([]ChatMessage, error)
		PostMessage(ctx context.Context, reply ChatReply) error
	}

	ChatRoom struct {
		RoomId    int64 `db:"room_id"`
		Public    bool  `db:"public"`
		GroupChat bool  `db:"group_chat"`
	}

	ChatMessage struct {
		Mid     int64  `db:"mid" json:"mid"`
		RoomId  int64  `db:"room_id" json:"roomId"`
		FromUid int64  `db:"fromuid" json:"fromuid"`
		Content string `db:"content" json:"content"`
		System  bool   `db:"system" json:"system"`
	}

	ChatReply struct {
		RoomId  int64
		Uid     int64
		Content string
		ToMid   int64
	}
)

// IsPrivate reports whether the room is a 1:1 conversation.
func (room *ChatRoom) IsPrivate() bool {
	return !room.Public && !room.GroupChat
}
