package keyword

import (
	"regexp"
	"strings"
	"unicode"
)

// punctuation matches every rune that is not a letter, number, mark, underscore or space.
// Han ideographs are letters, so they survive the replacement.
var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s\p{Z}]`)

// Tokenize splits text into lexical tokens for keyword scoring.
// Punctuation becomes whitespace, words are split on whitespace, Han runs are emitted one
// character per token, and all other runs are lower-cased and kept whole.
// Order follows the input and repeated words are kept.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	cleaned := punctuation.ReplaceAllString(text, " ")
	tokens := make([]string, 0, len(cleaned)/4)
	for _, word := range strings.Fields(cleaned) {
		tokens = appendWordTokens(tokens, word)
	}
	return tokens
}

// appendWordTokens segments one whitespace-free word into Han characters and non-Han runs.
func appendWordTokens(tokens []string, word string) []string {
	start := -1
	for i, r := range word {
		if isIdeograph(r) {
			if start >= 0 {
				tokens = append(tokens, strings.ToLower(word[start:i]))
				start = -1
			}
			tokens = append(tokens, string(r))
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, strings.ToLower(word[start:]))
	}
	return tokens
}

func isIdeograph(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// IsIdeographic reports whether s is non-empty and made only of Han characters.
func IsIdeographic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isIdeograph(r) {
			return false
		}
	}
	return true
}
