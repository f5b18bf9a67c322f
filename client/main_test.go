package main

import (
	"testing"

	"github.com/wfunc/ludoserver/network"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		line    string
		wantID  uint16
		wantErr bool
	}{
		{"create", network.MsgTypeCreateRoom, false},
		{"join abc234 Big Al", network.MsgTypeJoinRoom, false},
		{"join", 0, true},
		{"start", network.MsgTypeStartGame, false},
		{"roll", network.MsgTypeRollDice, false},
		{"move 2", network.MsgTypeMovePiece, false},
		{"move x", 0, true},
		{"leave", network.MsgTypeLeaveRoom, false},
		{"dance", 0, true},
		{"   ", 0, false},
	}
	for _, tt := range tests {
		id, _, err := command(tt.line)
		if (err != nil) != tt.wantErr || id != tt.wantID {
			t.Errorf("command(%q) = %d, %v; want %d, err=%v", tt.line, id, err, tt.wantID, tt.wantErr)
		}
	}

	_, move, _ := command("move 2")
	if idx := move.(network.MovePieceRequest).PieceIndex; idx == nil || *idx != 2 {
		t.Errorf("Expected piece index 2, got %v", idx)
	}

	_, body, _ := command("join abc234 Big Al")
	req := body.(network.JoinRoomRequest)
	if req.Code != "abc234" || req.Name != "Big Al" {
		t.Errorf("Unexpected join request %+v", req)
	}
}
