// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/room"
	"github.com/wfunc/ludoserver/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
	BroadcastToPlayers(playerIDs []string, msgID uint16, data []byte) error
}

// 基于房间的广播器
//
// Delivery is best effort: a send that fails is logged and skipped, never
// retried. The reader side of that connection notices the failure and
// disconnects the player.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomCode string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.GetRoom(roomCode)
	if !exists {
		return ErrRoomNotFound
	}
	return b.BroadcastToPlayers(r.PlayerIDs(), msgID, data)
}

func (b *RoomBroadcaster) BroadcastToPlayers(playerIDs []string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetMany(playerIDs) {
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Debugw("broadcast send failed", "session", s.GetID(), "msg", msgID, "error", err)
			continue
		}
	}
	return nil
}
