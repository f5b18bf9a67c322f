// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/ludoserver/network"
)

// Session is one client connection. Its ID doubles as the player ID inside
// rooms.
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time
	roomCode  string
	mutex     sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	return &Session{
		ID:        id,
		Conn:      conn,
		CreatedAt: time.Now(),
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

// RoomCode returns the room the session sits in, or "".
func (s *Session) RoomCode() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode
}

func (s *Session) SetRoomCode(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomCode = code
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetMany resolves the given IDs, skipping sessions that are gone.
func (m *Manager) GetMany(sessionIDs []string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		if session, ok := m.sessions[id]; ok {
			result = append(result, session)
		}
	}
	return result
}

// Count returns the number of connected sessions.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns every connected session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}
