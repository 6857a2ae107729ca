package ledger

import (
	"crypto/rand"
	"encoding/hex"
)

// ReferenceLength is the length of the external transaction reference.
const ReferenceLength = 20

// NewReference returns a random lowercase hex reference of ReferenceLength chars.
func NewReference() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:ReferenceLength], nil
}
