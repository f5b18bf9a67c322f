// ludo/board.go
package ludo

// Color 玩家颜色
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
)

// Palette is the seating order of colors. A joining player takes the first
// color nobody in the room holds.
var Palette = [...]Color{Red, Green, Yellow, Blue}

const (
	MaxPlayers      = 4
	MinPlayers      = 2
	PiecesPerPlayer = 4

	RingSize  = 52
	LastRing  = RingSize - 1 // 51
	HomeStart = RingSize     // 52
	FinalCell = 57

	Base     = -1
	Finished = 58

	DiceFaces   = 6
	RollToEnter = 6
)

// Pieces holds the four piece positions of one player, relative to that
// player's entry tile.
type Pieces [PiecesPerPlayer]int

// NewPieces returns four pieces waiting in base.
func NewPieces() Pieces {
	return Pieces{Base, Base, Base, Base}
}

var colorOffset = map[Color]int{
	Red:    0,
	Green:  13,
	Yellow: 26,
	Blue:   39,
}

var safeTiles = map[int]struct{}{
	0: {}, 8: {}, 13: {}, 21: {}, 26: {}, 34: {}, 39: {}, 47: {},
}

// Offset returns the absolute ring tile where pieces of color c enter.
func Offset(c Color) int {
	return colorOffset[c]
}

// ValidColor reports whether c belongs to the palette.
func ValidColor(c Color) bool {
	_, ok := colorOffset[c]
	return ok
}

// OnRing reports whether a relative position lies on the shared ring.
func OnRing(pos int) bool {
	return pos >= 0 && pos <= LastRing
}

// InHomeStretch reports whether a relative position is in the private stretch.
func InHomeStretch(pos int) bool {
	return pos >= HomeStart && pos <= FinalCell
}

// AbsoluteIndex maps a relative ring position of color c to the shared ring.
// Positions off the ring have no absolute tile.
func AbsoluteIndex(c Color, rel int) (int, bool) {
	if !OnRing(rel) {
		return 0, false
	}
	return (colorOffset[c] + rel) % RingSize, true
}

// IsSafeTile reports whether pieces on absolute tile abs are immune to capture.
func IsSafeTile(abs int) bool {
	_, ok := safeTiles[abs]
	return ok
}
