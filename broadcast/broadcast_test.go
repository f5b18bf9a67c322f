package broadcast

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/ludoserver/network"
	"github.com/wfunc/ludoserver/room"
	"github.com/wfunc/ludoserver/session"
)

// recordingConnection is a test double for network.Connection.
type recordingConnection struct {
	mu   sync.Mutex
	sent []uint16
	fail bool
}

func (c *recordingConnection) Send(msgID uint16, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection closed")
	}
	c.sent = append(c.sent, msgID)
	return nil
}
func (c *recordingConnection) Close() error                         { return nil }
func (c *recordingConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (c *recordingConnection) SetHeartbeat(interval time.Duration)  {}
func (c *recordingConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (c *recordingConnection) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestRoomBroadcaster_BroadcastToRoom(t *testing.T) {
	rooms := room.NewRoomManager()
	sessions := session.NewManager()
	b := NewRoomBroadcaster(rooms, sessions)

	r := rooms.CreateRoom()
	alice := &recordingConnection{}
	bob := &recordingConnection{fail: true}
	outsider := &recordingConnection{}
	sessions.Add(session.NewSession("alice", alice))
	sessions.Add(session.NewSession("bob", bob))
	sessions.Add(session.NewSession("outsider", outsider))
	rooms.JoinRoom(r.Code, "alice", "Alice")
	rooms.JoinRoom(r.Code, "bob", "Bob")

	if err := b.BroadcastToRoom(r.Code, network.MsgTypeRoomUpdate, []byte("{}")); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	if alice.count() != 1 {
		t.Errorf("Expected alice to receive 1 message, got %d", alice.count())
	}
	if bob.count() != 0 {
		t.Errorf("Expected failed send to be skipped, got %d", bob.count())
	}
	if outsider.count() != 0 {
		t.Errorf("Players outside the room must not receive messages, got %d", outsider.count())
	}
}

func TestRoomBroadcaster_UnknownRoom(t *testing.T) {
	b := NewRoomBroadcaster(room.NewRoomManager(), session.NewManager())
	if err := b.BroadcastToRoom("NOPE00", network.MsgTypeRoomUpdate, nil); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}
