package critique

import (
	"strings"
	"unicode"
)

const tokensPerWord = 1.33

// EstimateTokens gives a rough token count from the word count.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * tokensPerWord)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// TruncateToTokens cuts text after the last whole word that fits in
// maxTokens, keeping the original spacing up to that point.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if EstimateTokens(text) <= maxTokens {
		return text
	}
	keep := int(float64(maxTokens) / tokensPerWord)
	if keep == 0 {
		return ""
	}

	words := 0
	inWord := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if inWord && space {
			words++
			if words == keep {
				return text[:i]
			}
		}
		inWord = !space
	}
	return text
}
