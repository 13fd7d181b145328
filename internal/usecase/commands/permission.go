package commands

import "catcmd/internal/domain"

// Decision is the result of a permission check.
type Decision struct {
	Allowed  bool
	Command  string
	Required domain.ViewerLevel
	Actual   domain.ViewerLevel
}

// Err is nil when the decision allows the command.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &PermissionDeniedError{Command: d.Command, Required: d.Required, Actual: d.Actual}
}

// CheckPermission allows cmd iff actual >= cmd.Meta().MinLevel.
func CheckPermission(actual domain.ViewerLevel, cmd Command) Decision {
	required := cmd.Meta().MinLevel
	return Decision{
		Allowed:  actual.AtLeast(required),
		Command:  cmd.Kind().String(),
		Required: required,
		Actual:   actual,
	}
}
