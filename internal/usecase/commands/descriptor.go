package commands

import (
	"time"

	"catcmd/internal/domain"
)

// Grammar turns the argument tokens of one command into a validated command
// value. It must be pure: same input, same output.
type Grammar func(in Input) (Command, error)

// Descriptor is the static definition of a command kind.
type Descriptor struct {
	Kind        Kind
	Name        string
	Aliases     []string
	Usage       string
	Description string

	Cost           int
	MinLevel       domain.ViewerLevel
	ViewerCooldown time.Duration
	GlobalCooldown time.Duration

	Grammar Grammar
}

func (d Descriptor) metadata() Metadata {
	return Metadata{
		Cost:           d.Cost,
		MinLevel:       d.MinLevel,
		ViewerCooldown: d.ViewerCooldown,
		GlobalCooldown: d.GlobalCooldown,
	}
}

// Input is what a Grammar receives.
type Input struct {
	Args []string
	// Now is the parser clock in UTC; grammars use it for close dates.
	Now  time.Time
	Meta Metadata

	name  string
	usage string
}

// Usage returns the ArgumentError for this command.
func (in Input) Usage() error {
	return &ArgumentError{Command: in.name, Usage: in.usage}
}

// Check validates one field against cs.
func (in Input) Check(field, value string, cs ...Constraint) error {
	return check(in.name, field, value, cs...)
}
