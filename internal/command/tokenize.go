package command

import (
	"strings"
	"unicode"
)

// Tokenize splits text on whitespace. A double or single quote that starts a
// token opens a quoted run, which may contain spaces and ends at the matching
// quote followed by whitespace or the end of the input. Quotes elsewhere are
// literal text, so "Bob's" stays one word. An unterminated run extends to the end
// of the input and its opening quote is dropped.
func Tokenize(text string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		started bool
	)

	flush := func() {
		if started && current.Len() > 0 {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		started = false
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case quote != 0:
			if r == quote && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case (r == '"' || r == '\'') && !started:
			quote = r
			started = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens
}
