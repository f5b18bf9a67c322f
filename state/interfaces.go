// state/interfaces.go
package state

// RoomContext is what a phase needs from the room that owns it.
// Implementations are called while the room holds its own lock, so they must
// not lock again.
type RoomContext interface {
	GetID() string
	PlayerCount() int
}
