package utils

import (
	"github.com/google/uuid"
)

// PNRLength is the fixed width of a booking reference.
const PNRLength = 10

const pnrAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// pnrByteLimit is the largest multiple of len(pnrAlphabet) that fits a byte.
// Bytes at or above it are rejected so every symbol is equally likely.
const pnrByteLimit = 252

// NewPNR returns a random 10 character upper-case alphanumeric reference.
// Uniqueness is enforced by the bookings.pnr_number index, not here.
func NewPNR() string {
	out := make([]byte, 0, PNRLength)
	for len(out) < PNRLength {
		id := uuid.New()
		for i, b := range id {
			// bytes 6 and 8 carry the version and variant bits
			if i == 6 || i == 8 || int(b) >= pnrByteLimit {
				continue
			}
			out = append(out, pnrAlphabet[int(b)%len(pnrAlphabet)])
			if len(out) == PNRLength {
				break
			}
		}
	}
	return string(out)
}

// ValidPNR reports whether s has the shape of a PNR.
func ValidPNR(s string) bool {
	if len(s) != PNRLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// NewRequestID returns a fresh request correlation id.
func NewRequestID() string {
	return uuid.NewString()
}
