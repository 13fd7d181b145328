package commands

import (
	"strings"
	"time"
)

// Trigger marks a chat line as a command.
const Trigger = "!"

type Parser struct {
	registry *Registry
	now      func() time.Time
}

type ParserOption func(*Parser)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

func NewParser(registry *Registry, opts ...ParserOption) *Parser {
	p := &Parser{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Registry() *Registry {
	return p.registry
}

// Parse turns a chat line into a command. It returns (nil, nil) when the line
// is ordinary chat, and one of SyntaxError, UnknownCommandError,
// ArgumentError or ValidationError when the line is a broken command.
func (p *Parser) Parse(text string) (Command, error) {
	text = strings.TrimSpace(text)
	if !hasTrigger(text) {
		return nil, nil
	}

	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	first := tokens[0]
	if !strings.HasPrefix(first, Trigger) {
		// The trigger was quoted away, e.g. `"!" hi`.
		return nil, nil
	}
	name := strings.TrimPrefix(first, Trigger)
	if name == "" {
		return nil, nil
	}

	desc, ok := p.registry.Lookup(name)
	if !ok {
		return nil, &UnknownCommandError{Name: strings.ToLower(name)}
	}

	cmd, err := desc.Grammar(Input{
		Args:  tokens[1:],
		Now:   p.now().UTC(),
		Meta:  desc.metadata(),
		name:  desc.Name,
		usage: desc.Usage,
	})
	if err != nil {
		return nil, err
	}
	if cmd == nil || cmd.Kind() != desc.Kind {
		return nil, &KindMismatchError{Command: desc.Name, Want: desc.Kind, Got: kindOf(cmd)}
	}
	return cmd, nil
}

// hasTrigger reports whether the first token can start with the trigger:
// either the line does, or an opening quote directly precedes it. Other lines
// are chat and never reach the tokenizer.
func hasTrigger(text string) bool {
	if strings.HasPrefix(text, Trigger) {
		return true
	}
	if text == "" || (text[0] != '"' && text[0] != '\'') {
		return false
	}
	return strings.HasPrefix(text[1:], Trigger)
}

func kindOf(cmd Command) Kind {
	if cmd == nil {
		return 0
	}
	return cmd.Kind()
}

// Render is the canonical chat form of cmd. Parsing it again yields an equal
// command.
func (p *Parser) Render(cmd Command) string {
	return Render(p.registry, cmd)
}

// Render writes cmd using the canonical name registered for its kind.
func Render(registry *Registry, cmd Command) string {
	name := cmd.Kind().String()
	if desc, ok := registry.Descriptor(cmd.Kind()); ok {
		name = desc.Name
	}
	var b strings.Builder
	b.WriteString(Trigger)
	b.WriteString(name)
	for _, arg := range cmd.Args() {
		b.WriteByte(' ')
		b.WriteString(quoteToken(arg))
	}
	return b.String()
}
