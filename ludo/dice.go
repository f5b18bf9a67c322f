package ludo

import (
	crand "crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Roller produces die faces in 1..DiceFaces. Implementations must be safe for
// concurrent use; every room shares the same roller.
type Roller interface {
	Roll() int
}

// RollerFunc adapts a function to Roller.
type RollerFunc func() int

func (f RollerFunc) Roll() int { return f() }

// CryptoRoller draws from crypto/rand and falls back to math/rand when the
// system source fails.
type CryptoRoller struct{}

// NewCryptoRoller returns the default roller.
func NewCryptoRoller() CryptoRoller {
	return CryptoRoller{}
}

func (CryptoRoller) Roll() int {
	n, err := crand.Int(crand.Reader, big.NewInt(DiceFaces))
	if err != nil {
		return mrand.IntN(DiceFaces) + 1
	}
	return int(n.Int64()) + 1
}
