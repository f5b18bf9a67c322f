package room

import "github.com/wfunc/ludoserver/ludo"

// Event is an outbound notification produced by the engine for every member
// of a room. The set of variants is closed.
type Event interface {
	isEvent()
}

// PlayerInfo identifies a seated player.
type PlayerInfo struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Color ludo.Color `json:"color"`
}

// PlayerPieces is a player together with piece positions.
type PlayerPieces struct {
	PlayerInfo
	Pieces ludo.Pieces `json:"pieces"`
}

// Capture records one piece sent back to base.
type Capture struct {
	VictimID   string `json:"victim"`
	CapturerID string `json:"capturer"`
	Piece      int    `json:"piece"`
	Tile       int    `json:"tile"`
}

type RoomCreated struct {
	Code string `json:"code"`
	Link string `json:"link"`
}

type RoomUpdate struct {
	Code    string       `json:"code"`
	Players []PlayerInfo `json:"players"`
	Started bool         `json:"started"`
	Turn    string       `json:"turn"`
	Log     []string     `json:"log"`
}

type DiceRolled struct {
	PlayerID string `json:"player"`
	Value    int    `json:"roll"`
	Movable  []int  `json:"movable"`
}

type BoardState struct {
	Code     string         `json:"code"`
	Players  []PlayerPieces `json:"players"`
	Captures []Capture      `json:"captures,omitempty"`
	Log      []string       `json:"log"`
}

type TurnChanged struct {
	PlayerID string `json:"id"`
}

// GameOver carries the final room state for the archive; it stays off the
// wire.
type GameOver struct {
	Code   string     `json:"code"`
	Winner PlayerInfo `json:"winner"`
	Final  Snapshot   `json:"-"`
}

func (RoomCreated) isEvent() {}
func (RoomUpdate) isEvent()  {}
func (DiceRolled) isEvent()  {}
func (BoardState) isEvent()  {}
func (TurnChanged) isEvent() {}
func (GameOver) isEvent()    {}
