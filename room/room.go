// room/room.go
package room

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/ludo"
	"github.com/wfunc/ludoserver/state"
)

const defaultPlayerName = "Player"

// Player 房间中的玩家
type Player struct {
	ID     string
	Name   string
	Color  ludo.Color
	Pieces ludo.Pieces
}

func (p *Player) info() PlayerInfo {
	return PlayerInfo{ID: p.ID, Name: p.Name, Color: p.Color}
}

// TurnState is the dice outcome of the current turn. It is either empty or
// holds a pending roll with the pieces that roll may move.
type TurnState struct {
	Pending bool  `json:"pending"`
	Value   int   `json:"value,omitempty"`
	Movable []int `json:"movable,omitempty"`
}

// Room 是一局 Ludo 的状态机。所有操作都在 mu 下串行执行。
type Room struct {
	Code      string
	CreatedAt time.Time

	players   map[string]*Player
	joinOrder []string // 加入顺序
	turnOrder []string // 开局时固定
	turnIndex int
	turn      string
	dice      TurnState
	log       []string
	winner    string
	startedAt time.Time
	closed    bool

	phase  *state.PhaseMachine
	roller ludo.Roller
	mu     sync.Mutex

	// deliver 保证事件按引擎顺序送达，先于 mu 获取
	deliver sync.Mutex
}

// NewRoom 创建一个新房间
func NewRoom(code string, roller ludo.Roller) *Room {
	r := &Room{
		Code:      code,
		CreatedAt: time.Now(),
		players:   make(map[string]*Player),
		roller:    roller,
	}
	r.phase = state.NewPhaseMachine(r)
	return r
}

// --- 实现 state.RoomContext 接口 ---

func (r *Room) GetID() string {
	return r.Code
}

// PlayerCount is called by phase guards with r.mu held.
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// --- 房间核心逻辑 ---

// Join seats a player and starts the game once two players are seated.
// Players joining a running game are seated but never enter the turn order.
func (r *Room) Join(playerID, name string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomNotFound
	}
	if _, exists := r.players[playerID]; exists {
		return nil, ErrAlreadyInRoom
	}
	if len(r.players) >= ludo.MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.phase.Phase() == state.PhaseFinished {
		return nil, ErrGameOver
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultPlayerName
	}

	p := &Player{
		ID:     playerID,
		Name:   name,
		Color:  r.freeColor(),
		Pieces: ludo.NewPieces(),
	}
	r.players[playerID] = p
	r.joinOrder = append(r.joinOrder, playerID)
	logger.Log.Infow("player joined", "room", r.Code, "player", playerID, "color", p.Color)

	r.startIfPossible()
	return []Event{r.roomUpdate()}, nil
}

// Start starts the game on request. Starting an already running game only
// echoes the current state.
func (r *Room) Start(requesterID string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[requesterID]; !ok {
		return nil, ErrPlayerNotInRoom
	}
	if len(r.players) < ludo.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	r.startIfPossible()
	return []Event{r.roomUpdate()}, nil
}

// Roll rolls the die for the player holding the turn. When no piece can move
// the turn passes at once, even on a six.
func (r *Room) Roll(requesterID string) (DiceRolled, []Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.activePlayer(requesterID)
	if err != nil {
		return DiceRolled{}, nil, err
	}
	if r.dice.Pending {
		return DiceRolled{}, nil, ErrAlreadyRolled
	}

	roll := r.roller.Roll()
	movable := ludo.Movable(p.Pieces, roll)
	rolled := DiceRolled{PlayerID: p.ID, Value: roll, Movable: slices.Clone(movable)}
	events := []Event{rolled}

	if len(movable) == 0 {
		r.appendLog("%s rolled %d and cannot move", p.Name, roll)
		r.dice = TurnState{}
		r.advanceTurn(false)
		return rolled, append(events, TurnChanged{PlayerID: r.turn}), nil
	}

	r.dice = TurnState{Pending: true, Value: roll, Movable: movable}
	return rolled, events, nil
}

// Move applies the pending roll to one of the active player's pieces.
func (r *Room) Move(requesterID string, pieceIndex int) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.activePlayer(requesterID)
	if err != nil {
		return nil, err
	}
	if !r.dice.Pending {
		return nil, ErrNoDiceRolled
	}
	if pieceIndex < 0 || pieceIndex >= ludo.PiecesPerPlayer {
		return nil, ErrIllegalMove
	}

	roll := r.dice.Value
	oldPos := p.Pieces[pieceIndex]
	if !slices.Contains(r.dice.Movable, pieceIndex) || !ludo.CanMove(oldPos, roll) {
		return nil, ErrIllegalMove
	}

	newPos := ludo.Move(oldPos, roll)
	p.Pieces[pieceIndex] = newPos
	r.dice = TurnState{}
	captures := r.captureAt(p, newPos)

	if ludo.AllFinished(p.Pieces) {
		r.winner = p.ID
		r.appendLog("%s has won the game!", p.Name)
		if err := r.phase.Finish(); err != nil {
			logger.Log.Errorw("finish transition rejected", "room", r.Code, "error", err)
		}
		return []Event{
			r.boardState(captures),
			GameOver{Code: r.Code, Winner: p.info(), Final: r.snapshot()},
		}, nil
	}

	r.advanceTurn(roll == ludo.RollToEnter)
	return []Event{
		r.boardState(captures),
		TurnChanged{PlayerID: r.turn},
	}, nil
}

// Leave removes a player. It reports whether the room is now empty; an empty
// room produces no events and must be dropped by the registry.
func (r *Room) Leave(playerID string) (events []Event, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return nil, len(r.players) == 0
	}

	delete(r.players, playerID)
	r.joinOrder = slices.DeleteFunc(r.joinOrder, func(id string) bool { return id == playerID })
	logger.Log.Infow("player left", "room", r.Code, "player", playerID)

	if len(r.players) == 0 {
		r.turnOrder = nil
		return nil, true
	}

	r.appendLog("%s left the game", p.Name)

	turnMoved := false
	if leftAt := slices.Index(r.turnOrder, playerID); leftAt >= 0 {
		r.turnOrder = slices.Delete(r.turnOrder, leftAt, leftAt+1)

		switch {
		case len(r.turnOrder) == 0:
			// only late joiners remain; nobody holds a turn any more
			r.turnIndex = 0
			r.turn = ""
			r.dice = TurnState{}
		case r.turn == playerID:
			r.turnIndex %= len(r.turnOrder)
			r.turn = r.turnOrder[r.turnIndex]
			r.dice = TurnState{}
			turnMoved = r.phase.Phase() == state.PhasePlaying
		case leftAt < r.turnIndex:
			r.turnIndex--
		}
	}

	events = []Event{r.roomUpdate()}
	if turnMoved {
		events = append(events, TurnChanged{PlayerID: r.turn})
	}
	return events, false
}

// close marks an empty room as removed so late joiners see it as gone.
// It fails when someone joined in the meantime.
func (r *Room) close() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) > 0 {
		return false
	}
	r.closed = true
	return true
}

// Sequence runs fn under the room's delivery lock. An action and the
// broadcast of its events belong in one fn, so members receive events in the
// order the engine produced them.
func (r *Room) Sequence(fn func()) {
	r.deliver.Lock()
	defer r.deliver.Unlock()
	fn()
}

// HasPlayer reports whether playerID is seated in the room.
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[playerID]
	return ok
}

// PlayerIDs returns the seated players in join order.
func (r *Room) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.joinOrder)
}

// Phase returns the current phase ID.
func (r *Room) Phase() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase.Phase()
}

// --- 内部方法，调用方持有 r.mu ---

func (r *Room) freeColor() ludo.Color {
	used := make(map[ludo.Color]bool, len(r.players))
	for _, p := range r.players {
		used[p.Color] = true
	}
	for _, c := range ludo.Palette {
		if !used[c] {
			return c
		}
	}
	// unreachable while len(players) < MaxPlayers
	return ""
}

func (r *Room) startIfPossible() {
	if r.phase.Phase() != state.PhaseWaiting || len(r.players) < ludo.MinPlayers {
		return
	}
	if err := r.phase.Start(); err != nil {
		logger.Log.Errorw("start transition rejected", "room", r.Code, "error", err)
		return
	}
	r.turnOrder = slices.Clone(r.joinOrder)
	r.turnIndex = 0
	r.turn = r.turnOrder[0]
	r.startedAt = time.Now()
	r.appendLog("Game started!")
}

func (r *Room) activePlayer(requesterID string) (*Player, error) {
	switch r.phase.Phase() {
	case state.PhaseWaiting:
		return nil, ErrGameNotStarted
	case state.PhaseFinished:
		return nil, ErrGameOver
	}
	p, ok := r.players[requesterID]
	if !ok {
		return nil, ErrPlayerNotInRoom
	}
	if r.turn != requesterID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// captureAt sends every opposing piece sharing the mover's landing tile back
// to base. Home stretch cells and safe tiles never capture.
func (r *Room) captureAt(mover *Player, newPos int) []Capture {
	abs, onRing := ludo.AbsoluteIndex(mover.Color, newPos)
	if !onRing || ludo.IsSafeTile(abs) {
		return nil
	}

	var captures []Capture
	for _, id := range r.joinOrder {
		if id == mover.ID {
			continue
		}
		victim := r.players[id]
		for i, pos := range victim.Pieces {
			if other, ok := ludo.AbsoluteIndex(victim.Color, pos); ok && other == abs {
				victim.Pieces[i] = ludo.Base
				captures = append(captures, Capture{
					VictimID:   victim.ID,
					CapturerID: mover.ID,
					Piece:      i,
					Tile:       abs,
				})
				r.appendLog("%s's piece captured by %s", victim.Name, mover.Name)
				logger.Log.Infow("piece captured", "room", r.Code, "victim", victim.ID, "capturer", mover.ID, "tile", abs)
			}
		}
	}
	return captures
}

func (r *Room) advanceTurn(rolledSix bool) {
	if rolledSix {
		r.appendLog("%s rolls a six and goes again", r.players[r.turn].Name)
		return
	}
	r.turnIndex = (r.turnIndex + 1) % len(r.turnOrder)
	r.turn = r.turnOrder[r.turnIndex]
}

func (r *Room) appendLog(format string, args ...any) {
	r.log = append(r.log, fmt.Sprintf(format, args...))
}

func (r *Room) roomUpdate() RoomUpdate {
	players := make([]PlayerInfo, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		players = append(players, r.players[id].info())
	}
	return RoomUpdate{
		Code:    r.Code,
		Players: players,
		Started: r.phase.Phase() != state.PhaseWaiting,
		Turn:    r.turn,
		Log:     slices.Clone(r.log),
	}
}

func (r *Room) boardState(captures []Capture) BoardState {
	return BoardState{
		Code:     r.Code,
		Players:  r.piecesInOrder(),
		Captures: captures,
		Log:      slices.Clone(r.log),
	}
}

func (r *Room) piecesInOrder() []PlayerPieces {
	players := make([]PlayerPieces, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		p := r.players[id]
		players = append(players, PlayerPieces{PlayerInfo: p.info(), Pieces: p.Pieces})
	}
	return players
}
