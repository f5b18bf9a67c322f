package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/network"
	"github.com/wfunc/ludoserver/room"
	"github.com/wfunc/ludoserver/session"
)

// clientErrors maps engine errors to the text shown to players and the
// metrics label.
var clientErrors = []struct {
	err    error
	reason string
	text   string
}{
	{room.ErrRoomNotFound, "room_not_found", "Room not found"},
	{room.ErrRoomFull, "room_full", "Room is full (maximum 4 players)"},
	{room.ErrNotEnoughPlayers, "not_enough_players", "Need at least 2 players to start"},
	{room.ErrGameNotStarted, "game_not_started", "Game not started"},
	{room.ErrNotYourTurn, "not_your_turn", "Not your turn"},
	{room.ErrNoDiceRolled, "no_dice_rolled", "No dice roll available"},
	{room.ErrIllegalMove, "illegal_move", "Invalid move"},
	{room.ErrAlreadyRolled, "already_rolled", "Dice already rolled"},
	{room.ErrPlayerNotInRoom, "not_in_room", "You are not in this room"},
	{room.ErrAlreadyInRoom, "already_in_room", "Already in this room"},
	{room.ErrGameOver, "game_over", "Game is over"},
}

var messageNames = map[uint16]string{
	network.MsgTypeHeartbeat:  "heartbeat",
	network.MsgTypeCreateRoom: "create_room",
	network.MsgTypeJoinRoom:   "join_room",
	network.MsgTypeStartGame:  "start_game",
	network.MsgTypeLeaveRoom:  "leave_room",
	network.MsgTypeRollDice:   "roll_dice",
	network.MsgTypeMovePiece:  "move_piece",
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	defer func() {
		s.monitor.ObserveMessageLatency(time.Since(start))
	}()

	name, known := messageNames[packet.MsgID]
	if !known {
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		return
	}
	s.monitor.IncMessagesReceived(name)

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// ReadPacket 已延长读超时
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess)
	case network.MsgTypeLeaveRoom:
		s.leaveRoom(sess)
	case network.MsgTypeRollDice:
		s.handleRollDice(sess)
	case network.MsgTypeMovePiece:
		s.handleMovePiece(sess, packet)
	}
}

// handleCreateRoom answers only the creator. The creator still has to join,
// but the session is bound to the room so an unjoined room is dropped when
// the creator leaves.
func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req network.CreateRoomRequest
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
	}

	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = s.opts.PublicOrigin
	}

	s.leaveRoom(sess)
	r := s.roomManager.CreateRoom()
	sess.SetRoomCode(r.Code)
	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.Code)

	created := room.RoomCreated{
		Code: r.Code,
		Link: fmt.Sprintf("%s/?room=%s", strings.TrimRight(origin, "/"), r.Code),
	}
	s.sendEvent(sess, created)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req network.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	code := room.NormalizeCode(req.Code)

	// 同一时间只能在一个房间
	if current := sess.RoomCode(); current != "" && current != code {
		s.leaveRoom(sess)
	}

	s.roomManager.Sequence(code, func() {
		events, err := s.roomManager.JoinRoom(code, sess.GetID(), req.Name)
		if err != nil {
			s.sendError(sess, err)
			return
		}
		sess.SetRoomCode(code)
		logger.Log.Infof("Session %s joined room %s", sess.GetID(), code)
		s.publish(code, events)
	})
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	code := sess.RoomCode()
	s.roomManager.Sequence(code, func() {
		events, err := s.roomManager.StartGame(code, sess.GetID())
		if err != nil {
			s.sendError(sess, err)
			return
		}
		s.publish(code, events)
	})
}

func (s *GameServer) handleRollDice(sess *session.Session) {
	code := sess.RoomCode()
	s.roomManager.Sequence(code, func() {
		rolled, events, err := s.roomManager.RollDice(code, sess.GetID())
		if err != nil {
			s.sendError(sess, err)
			return
		}
		s.monitor.ObserveDiceRoll(rolled.Value)
		s.publish(code, events)
	})
}

func (s *GameServer) handleMovePiece(sess *session.Session, packet *network.Packet) {
	var req network.MovePieceRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil || req.PieceIndex == nil {
		return
	}

	code := sess.RoomCode()
	s.roomManager.Sequence(code, func() {
		events, err := s.roomManager.MovePiece(code, sess.GetID(), *req.PieceIndex)
		if err != nil {
			s.sendError(sess, err)
			return
		}
		s.publish(code, events)
	})
}

// leaveRoom removes the session from its room, if any, and tells the others.
func (s *GameServer) leaveRoom(sess *session.Session) {
	code := sess.RoomCode()
	if code == "" {
		return
	}
	sess.SetRoomCode("")
	s.roomManager.Sequence(code, func() {
		s.publish(code, s.roomManager.Disconnect(code, sess.GetID()))
	})
}

// publish fans events out to the room and runs their side effects.
func (s *GameServer) publish(code string, events []room.Event) {
	for _, e := range events {
		msgID, data, err := encodeEvent(e)
		if err != nil {
			logger.Log.Errorw("encode event failed", "room", code, "error", err)
			continue
		}
		if err := s.broadcaster.BroadcastToRoom(code, msgID, data); err != nil {
			logger.Log.Debugw("broadcast skipped", "room", code, "msg", msgID, "error", err)
		}

		switch ev := e.(type) {
		case room.BoardState:
			if len(ev.Captures) > 0 {
				s.monitor.AddCaptures(len(ev.Captures))
			}
		case room.GameOver:
			s.onGameOver(ev)
		}
	}
}

// onGameOver archives the final state carried by the event, which survives
// the room being torn down before this runs.
func (s *GameServer) onGameOver(ev room.GameOver) {
	s.monitor.IncGamesFinished()
	logger.Log.Infow("game over", "room", ev.Code, "winner", ev.Winner.ID)
	s.records.RecordGameAsync(ev.Final)
}

// sendEvent delivers one event to a single session.
func (s *GameServer) sendEvent(sess *session.Session, e room.Event) {
	msgID, data, err := encodeEvent(e)
	if err != nil {
		logger.Log.Errorw("encode event failed", "session", sess.GetID(), "error", err)
		return
	}
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Debugw("send failed", "session", sess.GetID(), "msg", msgID, "error", err)
	}
}

// sendError replies to the requester only.
func (s *GameServer) sendError(sess *session.Session, err error) {
	reason, text := describeError(err)
	s.monitor.IncActionErrors(reason)

	data, _ := json.Marshal(network.ErrorMessage{Message: text})
	if sendErr := sess.Send(network.MsgTypeError, data); sendErr != nil {
		logger.Log.Debugw("send error failed", "session", sess.GetID(), "error", sendErr)
	}
}

func describeError(err error) (reason, text string) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			return ce.reason, ce.text
		}
	}
	logger.Log.Errorw("unexpected action error", "error", err)
	return "internal", "Internal error"
}

// encodeEvent maps every event variant to its wire message.
func encodeEvent(e room.Event) (uint16, []byte, error) {
	var msgID uint16
	switch e.(type) {
	case room.RoomCreated:
		msgID = network.MsgTypeRoomCreated
	case room.RoomUpdate:
		msgID = network.MsgTypeRoomUpdate
	case room.DiceRolled:
		msgID = network.MsgTypeDiceRolled
	case room.BoardState:
		msgID = network.MsgTypeBoardState
	case room.TurnChanged:
		msgID = network.MsgTypeTurnChanged
	case room.GameOver:
		msgID = network.MsgTypeGameOver
	default:
		return 0, nil, fmt.Errorf("unknown event %T", e)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return 0, nil, err
	}
	return msgID, data, nil
}
