package state

import (
	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/ludo"
)

// Phase IDs of a Ludo room.
const (
	PhaseWaiting  = "waiting"
	PhasePlaying  = "playing"
	PhaseFinished = "finished"
)

// WaitingState 等待玩家加入
type WaitingState struct {
	RoomStateBase
}

func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{RoomStateBase{ID: PhaseWaiting, Room: room}}
}

// PlayingState 游戏进行中
type PlayingState struct {
	RoomStateBase
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{RoomStateBase{ID: PhasePlaying, Room: room}}
}

func (s *PlayingState) OnEnter() {
	logger.Log.Infow("room started", "room", s.Room.GetID(), "players", s.Room.PlayerCount())
}

// FinishedState 游戏结束，终态
type FinishedState struct {
	RoomStateBase
}

func NewFinishedState(room RoomContext) *FinishedState {
	return &FinishedState{RoomStateBase{ID: PhaseFinished, Room: room}}
}

func (s *FinishedState) OnEnter() {
	logger.Log.Infow("room finished", "room", s.Room.GetID())
}

// PhaseMachine drives a room through waiting -> playing -> finished.
// No other transition is accepted.
type PhaseMachine struct {
	*BaseStateMachine
	Waiting  *WaitingState
	Playing  *PlayingState
	Finished *FinishedState
}

func NewPhaseMachine(room RoomContext) *PhaseMachine {
	m := &PhaseMachine{
		Waiting:  NewWaitingState(room),
		Playing:  NewPlayingState(room),
		Finished: NewFinishedState(room),
	}
	m.BaseStateMachine = NewStrictStateMachine(m.Waiting)
	m.AddTransition(m.Waiting, m.Playing, func() bool {
		return room.PlayerCount() >= ludo.MinPlayers
	})
	m.AddTransition(m.Playing, m.Finished, nil)
	return m
}

// Phase returns the ID of the current phase.
func (m *PhaseMachine) Phase() string {
	return m.GetCurrentState().GetID()
}

func (m *PhaseMachine) Start() error  { return m.ChangeState(m.Playing) }
func (m *PhaseMachine) Finish() error { return m.ChangeState(m.Finished) }
