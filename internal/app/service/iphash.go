package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash prefix lengths. Click events keep only a short prefix so stored
// events cannot be mapped back to a client; limiter keys get a longer one
// since they expire with the window anyway.
const (
	addrHashLenLimiter = 16
	addrHashLenClick   = 8
)

// hashAddr returns a truncated hex sha256 of a client network address.
// Raw addresses never reach the store.
func hashAddr(addr string, length int) string {
	if addr == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(addr))
	out := hex.EncodeToString(sum[:])
	if length > 0 && length < len(out) {
		out = out[:length]
	}
	return out
}
