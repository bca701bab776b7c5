package attendance

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// TokenScheme prefixes every distributable check-in token. Scanners strip it
// and hand the bare session id to RegisterCheckIn.
const TokenScheme = "attendance://"

const sessionCodeBytes = 6

func BuildToken(sessionID string) string {
	return TokenScheme + sessionID
}

func ParseToken(token string) (string, error) {
	id, ok := strings.CutPrefix(token, TokenScheme)
	if !ok || id == "" {
		return "", ErrMalformedToken
	}
	return id, nil
}

// NewSessionCode produces a short human-typable code for the manual entry
// fallback. Base58 avoids the 0/O and I/l lookalikes.
func NewSessionCode() (string, error) {
	buf := make([]byte, sessionCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session code: %w", err)
	}
	return base58.Encode(buf), nil
}
