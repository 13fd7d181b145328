package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Constraint is one declarative check on a raw field value. Name is what ends
// up in ValidationError.Constraint.
type Constraint interface {
	Name() string
	Check(value string) bool
}

type constraintFunc struct {
	name string
	fn   func(string) bool
}

func (c constraintFunc) Name() string             { return c.name }
func (c constraintFunc) Check(value string) bool { return c.fn(value) }

// Length bounds the value length in runes, inclusive.
func Length(min, max int) Constraint {
	return constraintFunc{
		name: fmt.Sprintf("length %d..%d", min, max),
		fn: func(v string) bool {
			n := utf8.RuneCountInString(v)
			return n >= min && n <= max
		},
	}
}

// OneOf requires case-insensitive membership in values.
func OneOf(values ...string) Constraint {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return constraintFunc{
		name: "one of " + strings.Join(values, ", "),
		fn: func(v string) bool {
			_, ok := set[strings.ToLower(v)]
			return ok
		},
	}
}

// IntRange requires a base-10 integer in [min, max].
func IntRange(min, max int) Constraint {
	return constraintFunc{
		name: fmt.Sprintf("integer %d..%d", min, max),
		fn: func(v string) bool {
			n, ok := parseDigits(v)
			return ok && n >= min && n <= max
		},
	}
}

// MinInt requires a base-10 integer >= min.
func MinInt(min int) Constraint {
	return constraintFunc{
		name: fmt.Sprintf("integer >= %d", min),
		fn: func(v string) bool {
			n, ok := parseDigits(v)
			return ok && n >= min
		},
	}
}

// Matches requires the whole value to match re.
func Matches(name string, re *regexp.Regexp) Constraint {
	return constraintFunc{
		name: name,
		fn: func(v string) bool {
			loc := re.FindStringIndex(v)
			return loc != nil && loc[0] == 0 && loc[1] == len(v)
		},
	}
}

// Either passes when any of the given constraints passes.
func Either(cs ...Constraint) Constraint {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name()
	}
	return constraintFunc{
		name: strings.Join(names, " or "),
		fn: func(v string) bool {
			for _, c := range cs {
				if c.Check(v) {
					return true
				}
			}
			return false
		},
	}
}

// check runs constraints in order and reports the first violation.
func check(command, field, value string, cs ...Constraint) error {
	for _, c := range cs {
		if !c.Check(value) {
			return &ValidationError{
				Command:    command,
				Field:      field,
				Constraint: c.Name(),
				Value:      value,
			}
		}
	}
	return nil
}

// parseDigits accepts only ASCII digits, so signs, spaces and "0x" forms fail.
func parseDigits(v string) (int, bool) {
	if !isDigits(v) {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigits(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

var durationPattern = regexp.MustCompile(`^(\d+)(day|hr|min)$`)

// DurationFormat is the constraint for poll and prediction windows such as
// "5hr", "30min" or "2day".
var DurationFormat = Matches(`duration (\d+)(day|hr|min)`, durationPattern)

var durationUnits = map[string]time.Duration{
	"min": time.Minute,
	"hr":  time.Hour,
	"day": 24 * time.Hour,
}

// ParseDuration parses the (\d+)(day|hr|min) format.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	unit := durationUnits[m[2]]
	if n > int(maxPollWindow/unit) {
		return 0, fmt.Errorf("duration %q exceeds %s", s, maxPollWindow)
	}
	return time.Duration(n) * unit, nil
}

// formatDuration renders d in the largest unit that divides it exactly.
func formatDuration(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0:
		return strconv.FormatInt(int64(d/(24*time.Hour)), 10) + "day"
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "hr"
	default:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "min"
	}
}
