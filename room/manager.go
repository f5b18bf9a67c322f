package room

import (
	"strings"
	"sync"

	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/ludo"
)

// --- 房间管理器 ---

// Manager 管理所有房间：房间号 -> 房间
type Manager struct {
	rooms   map[string]*Room
	mutex   sync.RWMutex
	roller  ludo.Roller
	newCode func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithRoller sets the dice source shared by all rooms.
func WithRoller(roller ludo.Roller) Option {
	return func(m *Manager) { m.roller = roller }
}

// WithCodeGenerator replaces NewCode.
func WithCodeGenerator(gen func() string) Option {
	return func(m *Manager) { m.newCode = gen }
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager(opts ...Option) *Manager {
	m := &Manager{
		rooms:   make(map[string]*Room),
		roller:  ludo.NewCryptoRoller(),
		newCode: NewCode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateRoom registers an empty room under a fresh code, drawing again when
// the code is already taken.
func (m *Manager) CreateRoom() *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := m.newCode()
	for {
		if _, taken := m.rooms[code]; !taken {
			break
		}
		logger.Log.Debugw("room code collision", "code", code)
		code = m.newCode()
	}

	room := NewRoom(code, m.roller)
	m.rooms[code] = room
	logger.Log.Infow("room created", "room", code)
	return room
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[NormalizeCode(code)]
	return room, exists
}

// RemoveRoomIfEmpty drops the room when nobody is seated in it.
func (m *Manager) RemoveRoomIfEmpty(code string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code = NormalizeCode(code)
	room, exists := m.rooms[code]
	if !exists || !room.close() {
		return false
	}
	delete(m.rooms, code)
	logger.Log.Infow("room removed", "room", code)
	return true
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Rooms returns the live rooms in no particular order.
func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// --- 面向传输层的操作 ---

func (m *Manager) JoinRoom(code, playerID, name string) ([]Event, error) {
	room, ok := m.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Join(playerID, name)
}

func (m *Manager) StartGame(code, requesterID string) ([]Event, error) {
	room, ok := m.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Start(requesterID)
}

func (m *Manager) RollDice(code, requesterID string) (DiceRolled, []Event, error) {
	room, ok := m.GetRoom(code)
	if !ok {
		return DiceRolled{}, nil, ErrRoomNotFound
	}
	return room.Roll(requesterID)
}

func (m *Manager) MovePiece(code, requesterID string, pieceIndex int) ([]Event, error) {
	room, ok := m.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Move(requesterID, pieceIndex)
}

// Disconnect removes a player and tears the room down once it is empty.
func (m *Manager) Disconnect(code, playerID string) []Event {
	room, ok := m.GetRoom(code)
	if !ok {
		return nil
	}
	events, empty := room.Leave(playerID)
	if empty {
		m.RemoveRoomIfEmpty(code)
	}
	return events
}

// Sequence runs fn in the delivery order of the room at code. Without such a
// room fn runs as is and the operations inside report ErrRoomNotFound.
func (m *Manager) Sequence(code string, fn func()) {
	if room, ok := m.GetRoom(code); ok {
		room.Sequence(fn)
		return
	}
	fn()
}

// NormalizeCode canonicalizes user-typed room codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
