package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashPhone returns a stable digest of a phone number for log correlation.
func HashPhone(phone string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(phone)))
	return hex.EncodeToString(sum[:])
}
