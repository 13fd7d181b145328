package commands

import (
	"errors"
	"fmt"

	"catcmd/internal/domain"
)

// ErrorKind classifies parse and authorization failures so callers can pick a
// reply policy without a type switch.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota + 1
	ErrUnknownCommand
	ErrArgument
	ErrValidation
	ErrPermission
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax"
	case ErrUnknownCommand:
		return "unknown_command"
	case ErrArgument:
		return "argument"
	case ErrValidation:
		return "validation"
	case ErrPermission:
		return "permission"
	default:
		return "unknown"
	}
}

// SyntaxError reports a quote that was opened and never closed.
type SyntaxError struct {
	Quote  rune
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("unterminated %c quote at offset %d", e.Quote, e.Offset)
}

func (e *SyntaxError) Kind() ErrorKind { return ErrSyntax }

type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

func (e *UnknownCommandError) Kind() ErrorKind { return ErrUnknownCommand }

// ArgumentError is returned when the argument count or shape does not fit the
// command grammar. Usage is the line to echo back to the viewer.
type ArgumentError struct {
	Command string
	Usage   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: bad arguments, usage: %s", e.Command, e.Usage)
}

func (e *ArgumentError) Kind() ErrorKind { return ErrArgument }

type ValidationError struct {
	Command    string
	Field      string
	Constraint string
	Value      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %s=%q violates %s", e.Command, e.Field, e.Value, e.Constraint)
}

func (e *ValidationError) Kind() ErrorKind { return ErrValidation }

type PermissionDeniedError struct {
	Command  string
	Required domain.ViewerLevel
	Actual   domain.ViewerLevel
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s requires %s, requester is %s", e.Command, e.Required, e.Actual)
}

func (e *PermissionDeniedError) Kind() ErrorKind { return ErrPermission }

// AliasCollisionError is a registry build failure: two descriptors claim the
// same alias.
type AliasCollisionError struct {
	Alias    string
	Existing string
	Incoming string
}

func (e *AliasCollisionError) Error() string {
	return fmt.Sprintf("alias %q of %s already registered by %s", e.Alias, e.Incoming, e.Existing)
}

// KindMismatchError means a descriptor's grammar built a command of another
// kind than the descriptor declares. It is a wiring bug, not viewer input.
type KindMismatchError struct {
	Command string
	Want    Kind
	Got     Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("commands: %s grammar built %s, want %s", e.Command, e.Got, e.Want)
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not one of the
// command errors.
func KindOf(err error) ErrorKind {
	var ke interface{ Kind() ErrorKind }
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	return 0
}
