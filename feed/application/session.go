package application

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"github.com/dfryer1193/postfeed/feed/domain"
)

const (
	sessionIDLength   = 7
	sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// The posts API only accepts author IDs of the form ^[a-z0-9]{7}@domain$.
var sessionIDRegex = regexp.MustCompile(`^[a-z0-9]{7}$`)

// NewSessionID returns a random lowercase alphanumeric session token.
func NewSessionID() (string, error) {
	alphabetLen := big.NewInt(int64(len(sessionIDAlphabet)))
	b := make([]byte, sessionIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate session id: %w", err)
		}
		b[i] = sessionIDAlphabet[n.Int64()]
	}
	return string(b), nil
}

// IsValidSessionID reports whether s can be used as a session token.
func IsValidSessionID(s string) bool {
	return sessionIDRegex.MatchString(s)
}

// Bootstrap returns the identity for a browser session. A well-formed stored
// token is reused; otherwise a new one is generated and created is true.
func Bootstrap(stored string, authorDomain string) (identity domain.Identity, created bool, err error) {
	if IsValidSessionID(stored) {
		return domain.Identity{SessionID: stored, Domain: authorDomain}, false, nil
	}

	sessionID, err := NewSessionID()
	if err != nil {
		return domain.Identity{}, false, err
	}
	return domain.Identity{SessionID: sessionID, Domain: authorDomain}, true, nil
}
