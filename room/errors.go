package room

import "errors"

// Errors returned by the engine. None of them mutates room state; the
// transport reports them to the requesting player only.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrNotEnoughPlayers = errors.New("need at least two players")
	ErrGameNotStarted   = errors.New("game not started")
	ErrGameOver         = errors.New("game is over")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNoDiceRolled     = errors.New("no dice rolled")
	ErrAlreadyRolled    = errors.New("dice already rolled this turn")
	ErrIllegalMove      = errors.New("illegal move")
	ErrPlayerNotInRoom  = errors.New("player not in room")
	ErrAlreadyInRoom    = errors.New("player already in room")
)
