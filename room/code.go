package room

import (
	"encoding/base32"

	"github.com/google/uuid"
)

// CodeLength is the length of a room code. Codes use the 32 symbols of the
// RFC 4648 base32 alphabet, which leaves about a billion codes.
const CodeLength = 6

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewCode returns a random room code taken from the leading bits of a
// version 4 UUID.
func NewCode() string {
	id := uuid.New()
	return codeEncoding.EncodeToString(id[:])[:CodeLength]
}
