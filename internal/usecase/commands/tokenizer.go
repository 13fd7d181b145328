package commands

import (
	"strings"
	"unicode"
)

// Tokenize splits text on whitespace. Single- or double-quoted spans belong to
// the surrounding token with the quotes removed, so `say "hi there"` yields
// [say, hi there] and `a"b c"` yields [ab c]. Backslashes have no special
// meaning.
func Tokenize(text string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		inToken bool
		quote   rune
		quoteAt int
	)

	for offset, r := range text {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			quoteAt = offset
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, &SyntaxError{Quote: quote, Offset: quoteAt}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	if tokens == nil {
		tokens = []string{}
	}
	return tokens, nil
}

// quoteToken is the inverse of Tokenize for a single value: it returns a form
// that tokenizes back to exactly one token equal to value.
func quoteToken(value string) string {
	if value != "" && !strings.ContainsAny(value, "\"'") && strings.IndexFunc(value, unicode.IsSpace) < 0 {
		return value
	}
	if !strings.ContainsRune(value, '"') {
		return `"` + value + `"`
	}
	if !strings.ContainsRune(value, '\'') {
		return "'" + value + "'"
	}
	// Both quote runes present: close and reopen around each double quote.
	return `"` + strings.ReplaceAll(value, `"`, `"'"'"`) + `"`
}
