package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// AnonymizedLength is the length of a hex encoded HMAC-SHA256 digest.
const AnonymizedLength = sha256.Size * 2

// AnonymizeIdentity derives the one-way replacement for a member uid.
// The election id is part of the input so the same member hashes differently per election.
func AnonymizeIdentity(identity string, electionID uuid.UUID, salt []byte) string {
	mac := hmac.New(sha256.New, salt)
	mac.Write(electionID[:])
	mac.Write([]byte{0})
	mac.Write([]byte(identity))
	return hex.EncodeToString(mac.Sum(nil))
}

// IsAnonymized reports whether v already has the shape of AnonymizeIdentity output.
func IsAnonymized(v string) bool {
	if len(v) != AnonymizedLength {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
