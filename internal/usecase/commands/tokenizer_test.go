package commands

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "blank", input: " \t\n ", want: []string{}},
		{name: "words", input: "!vote  abc 3", want: []string{"!vote", "abc", "3"}},
		{name: "double quotes", input: `!newpoll ab "long desc" o1`, want: []string{"!newpoll", "ab", "long desc", "o1"}},
		{name: "single quotes", input: `!tts 'hello   there'`, want: []string{"!tts", "hello   there"}},
		{name: "quote inside other quote", input: `"it's" 'say "hi"'`, want: []string{"it's", `say "hi"`}},
		{name: "mid word quote", input: `a"b c"d e`, want: []string{"ab cd", "e"}},
		{name: "empty quoted token", input: `x "" y`, want: []string{"x", "", "y"}},
		{name: "unicode spaces", input: "a\u00a0b", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	for _, input := range []string{`!tts "hello`, `it's`, `a 'b c`} {
		_, err := Tokenize(input)
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Fatalf("Tokenize(%q) error = %v, want SyntaxError", input, err)
		}
		if KindOf(err) != ErrSyntax {
			t.Fatalf("KindOf = %v", KindOf(err))
		}
	}

	_, err := Tokenize(`ok "open`)
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.Offset != 3 || syntaxErr.Quote != '"' {
		t.Fatalf("unexpected syntax error detail: %#v", err)
	}
}

func TestQuoteTokenRoundTrip(t *testing.T) {
	values := []string{"plain", "two words", "", `say "hi"`, "it's", `both ' and "`, "tab\tinside"}
	for _, v := range values {
		got, err := Tokenize(quoteToken(v))
		if err != nil {
			t.Fatalf("quoteToken(%q) = %q does not tokenize: %v", v, quoteToken(v), err)
		}
		if len(got) != 1 || got[0] != v {
			t.Fatalf("quoteToken(%q) round trip = %#v", v, got)
		}
	}
}
