package room

import (
	"slices"
	"time"
)

// Snapshot is a copy of a room's state that is safe to read without the lock.
type Snapshot struct {
	Code      string         `json:"code"`
	Phase     string         `json:"phase"`
	Players   []PlayerPieces `json:"players"`
	TurnOrder []string       `json:"turn_order"`
	Turn      string         `json:"turn"`
	Dice      TurnState      `json:"dice"`
	Log       []string       `json:"log"`
	Winner    string         `json:"winner,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	StartedAt time.Time      `json:"started_at"`
}

// Snapshot copies the room state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// snapshot 调用方持有 r.mu
func (r *Room) snapshot() Snapshot {
	dice := r.dice
	dice.Movable = slices.Clone(r.dice.Movable)

	return Snapshot{
		Code:      r.Code,
		Phase:     r.phase.Phase(),
		Players:   r.piecesInOrder(),
		TurnOrder: slices.Clone(r.turnOrder),
		Turn:      r.turn,
		Dice:      dice,
		Log:       slices.Clone(r.log),
		Winner:    r.winner,
		CreatedAt: r.CreatedAt,
		StartedAt: r.startedAt,
	}
}

// Player returns the snapshot entry for id.
func (s Snapshot) Player(id string) (PlayerPieces, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerPieces{}, false
}
