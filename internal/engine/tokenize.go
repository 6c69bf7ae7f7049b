package engine

import (
	"strings"
	"unicode"
)

// Tokenize splits line on whitespace outside double quotes and strips one
// layer of surrounding quotes from each token.
func Tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	inToken := false
	inQuote := false

	flush := func() {
		if !inToken {
			return
		}
		tokens = append(tokens, unquote(current.String()))
		current.Reset()
		inToken = false
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			inToken = true
			current.WriteRune(r)
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			inToken = true
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func unquote(token string) string {
	if len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) {
		return token[1 : len(token)-1]
	}
	return token
}
