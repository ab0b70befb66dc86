package room

import (
	"strings"

	"github.com/google/uuid"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewRoomID 6 位大写字母数字
func NewRoomID() string {
	b := uuid.New()
	var sb strings.Builder
	sb.Grow(idLength)
	for i := 0; i < idLength; i++ {
		sb.WriteByte(idAlphabet[int(b[i])%len(idAlphabet)])
	}
	return sb.String()
}
