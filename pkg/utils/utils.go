package utils

import "strings"

// TitleWords is how many leading words of the first user message make up a conversation title.
const TitleWords = 5

// HasLetter returns true if s contains at least one ASCII letter (a-zA-Z)
func HasLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return true
		}
	}
	return false
}

// HasNumber returns true if s contains at least one ASCII digit (0-9)
func HasNumber(s string) bool {
	for _, r := range s {
		if '0' <= r && r <= '9' {
			return true
		}
	}
	return false
}

// DeriveTitle returns the first five whitespace separated words of text followed by "...".
// The marker is appended even when text has five words or fewer.
func DeriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > TitleWords {
		words = words[:TitleWords]
	}
	return strings.Join(words, " ") + "..."
}
