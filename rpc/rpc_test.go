package rpc

import (
	"net/rpc"
	"strings"
	"testing"

	"github.com/wfunc/ludoserver/room"
	"github.com/wfunc/ludoserver/services"
)

func startTestServer(t *testing.T, rooms *room.Manager) *rpc.Client {
	t.Helper()

	srv, err := NewServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := srv.Register(NewGameService(rooms, services.NewRecordService(nil))); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	go srv.Start()
	t.Cleanup(srv.Stop)

	client, err := rpc.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestGameService_ListAndGetRoom(t *testing.T) {
	rooms := room.NewRoomManager()
	waiting := rooms.CreateRoom()
	playing := rooms.CreateRoom()
	rooms.JoinRoom(waiting.Code, "a", "Alice")
	rooms.JoinRoom(playing.Code, "b", "Bob")
	rooms.JoinRoom(playing.Code, "c", "Carol")

	client := startTestServer(t, rooms)

	var all ListRoomsReply
	if err := client.Call("GameService.ListRooms", &ListRoomsArgs{}, &all); err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(all.Rooms) != 2 {
		t.Fatalf("Expected 2 rooms, got %d", len(all.Rooms))
	}

	var started ListRoomsReply
	if err := client.Call("GameService.ListRooms", &ListRoomsArgs{Phase: "playing"}, &started); err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(started.Rooms) != 1 || started.Rooms[0].Code != playing.Code || started.Rooms[0].Players != 2 {
		t.Errorf("Unexpected filtered rooms %+v", started.Rooms)
	}

	var got GetRoomReply
	if err := client.Call("GameService.GetRoom", &GetRoomArgs{Code: strings.ToLower(playing.Code)}, &got); err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if got.Room.Code != playing.Code || got.Room.Turn != "b" {
		t.Errorf("Unexpected snapshot %+v", got.Room)
	}
}

func TestGameService_Errors(t *testing.T) {
	client := startTestServer(t, room.NewRoomManager())

	var got GetRoomReply
	err := client.Call("GameService.GetRoom", &GetRoomArgs{Code: "NOPE00"}, &got)
	if err == nil || err.Error() != room.ErrRoomNotFound.Error() {
		t.Errorf("Expected %q, got %v", room.ErrRoomNotFound, err)
	}

	var stats GetPlayerStatsReply
	err = client.Call("GameService.GetPlayerStats", &GetPlayerStatsArgs{Name: "Alice"}, &stats)
	if err == nil || err.Error() != services.ErrArchiveDisabled.Error() {
		t.Errorf("Expected %q, got %v", services.ErrArchiveDisabled, err)
	}
}
