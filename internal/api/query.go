package api

import (
	"strings"
	"unicode/utf8"
)

// MinWordLength is the shortest word treated as a station or search term.
const MinWordLength = 4

func queryWords(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// ParseStationQuery picks the word after the first "from" and the first "to"
// of text, keeping each only when it is at least MinWordLength runes long.
func ParseStationQuery(text string) (from, to string) {
	words := queryWords(text)
	return wordAfter(words, "from"), wordAfter(words, "to")
}

func wordAfter(words []string, marker string) string {
	for i, word := range words {
		if word != marker {
			continue
		}
		if i+1 < len(words) && utf8.RuneCountInString(words[i+1]) >= MinWordLength {
			return words[i+1]
		}
		return ""
	}
	return ""
}

// FindMatchingWords returns every lowercased word of text with at least
// MinWordLength runes, other than "from" and "to".
func FindMatchingWords(text string) []string {
	var matches []string
	for _, word := range queryWords(text) {
		if word == "from" || word == "to" {
			continue
		}
		if utf8.RuneCountInString(word) >= MinWordLength {
			matches = append(matches, word)
		}
	}
	return matches
}
