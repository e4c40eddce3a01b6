package session

import "strings"

// exitWords end a chat loop instead of being sent. Matching is
// case-insensitive and ignores surrounding whitespace.
var exitWords = map[string]struct{}{
	"exit":  {},
	"quit":  {},
	"/exit": {},
	"退出":    {},
}

// IsExit reports whether input is a sentinel that terminates the session.
// Empty or whitespace-only input counts as one.
func IsExit(input string) bool {
	word := strings.ToLower(strings.TrimSpace(input))
	if word == "" {
		return true
	}
	_, ok := exitWords[word]
	return ok
}
