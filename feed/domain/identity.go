package domain

import "strings"

// Identity is the author identity of one browser session.
// It is created once by the session bootstrap and never changes afterwards.
type Identity struct {
	SessionID string
	Domain    string
}

// AuthorID returns the "session@domain" string used for every write.
func (i Identity) AuthorID() string {
	return i.SessionID + "@" + i.Domain
}

// Owns reports whether authorID was produced by this session.
func (i Identity) Owns(authorID string) bool {
	return authorPrefix(authorID) == i.SessionID
}

// DisplayName returns "You" for the session's own content and "user-<prefix>" otherwise.
func (i Identity) DisplayName(authorID string) string {
	if i.SessionID != "" && i.Owns(authorID) {
		return "You"
	}
	return "user-" + authorPrefix(authorID)
}

func authorPrefix(authorID string) string {
	prefix, _, _ := strings.Cut(authorID, "@")
	return prefix
}
