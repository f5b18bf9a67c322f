package ludo

// CanMove reports whether a piece at pos may advance by roll.
//
// A piece leaves base only on a six. On the ring and in the home stretch the
// target may not pass the final cell. Finished pieces never move.
func CanMove(pos, roll int) bool {
	switch {
	case pos == Base:
		return roll == RollToEnter
	case OnRing(pos), InHomeStretch(pos):
		return pos+roll <= FinalCell
	default:
		return false
	}
}

// Move returns the position reached by a piece at pos after roll. Callers
// must check CanMove first.
//
// Reaching the final cell finishes the piece, so Move never returns
// FinalCell: the piece is reported as Finished instead.
func Move(pos, roll int) int {
	if pos == Base {
		return 0
	}
	if pos == Finished {
		return pos
	}

	next := pos + roll
	if OnRing(pos) && next <= LastRing {
		return next
	}
	if next >= FinalCell {
		return Finished
	}
	return next
}

// Movable lists the indices of pieces that may move with roll.
func Movable(pieces Pieces, roll int) []int {
	movable := make([]int, 0, PiecesPerPlayer)
	for i, pos := range pieces {
		if CanMove(pos, roll) {
			movable = append(movable, i)
		}
	}
	return movable
}

// AllFinished reports whether every piece has reached home.
func AllFinished(pieces Pieces) bool {
	for _, pos := range pieces {
		if pos != Finished {
			return false
		}
	}
	return true
}

// FinishedCount counts pieces that have reached home.
func FinishedCount(pieces Pieces) int {
	n := 0
	for _, pos := range pieces {
		if pos == Finished {
			n++
		}
	}
	return n
}
