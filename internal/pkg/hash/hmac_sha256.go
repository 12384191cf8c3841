package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer produces and checks payload signatures.
type Signer interface {
	// Sign returns the hex-encoded signature of data.
	Sign(data []byte) string
	// Verify reports whether signature matches data.
	Verify(signature string, data []byte) bool
}

// HMACSHA256 implements Signer with HMAC-SHA256.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a signer keyed by secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Sign returns the hex-encoded HMAC-SHA256 of data.
func (s *HMACSHA256) Sign(data []byte) string {
	return hex.EncodeToString(s.sum(data))
}

// Verify compares in constant time. Malformed hex never matches.
func (s *HMACSHA256) Verify(signature string, data []byte) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.sum(data))
}

func (s *HMACSHA256) sum(data []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(data)
	return h.Sum(nil)
}
