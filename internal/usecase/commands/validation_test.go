package commands

import (
	"regexp"
	"testing"
	"time"
)

func TestConstraints(t *testing.T) {
	tests := []struct {
		name string
		c    Constraint
		ok   []string
		bad  []string
	}{
		{"length", Length(2, 4), []string{"ab", "abcd", "ñé"}, []string{"a", "abcde", ""}},
		{"one of", OneOf("meow", "wawa"), []string{"meow", "WAWA"}, []string{"moo", ""}},
		{"int range", IntRange(1, 5), []string{"1", "5", "03"}, []string{"0", "6", "-1", "+2", "x", "", "2.0"}},
		{"min int", MinInt(50), []string{"50", "1000"}, []string{"49", "-50", "all"}},
		{"matches", Matches("hex", regexp.MustCompile(`[0-9a-f]+`)), []string{"beef"}, []string{"xbeef", "beefx", ""}},
		{"either", Either(OneOf("all"), MinInt(50)), []string{"all", "ALL", "51"}, []string{"10", "some"}},
		{"duration", DurationFormat, []string{"5hr", "30min", "2day"}, []string{"5h", "hr", "5 hr", "-5hr", "5hrs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.c.Name() == "" {
				t.Fatal("constraint without name")
			}
			for _, v := range tt.ok {
				if !tt.c.Check(v) {
					t.Fatalf("%s rejected %q", tt.c.Name(), v)
				}
			}
			for _, v := range tt.bad {
				if tt.c.Check(v) {
					t.Fatalf("%s accepted %q", tt.c.Name(), v)
				}
			}
		})
	}
}

func TestCheckReportsFirstViolation(t *testing.T) {
	err := check("tts", "text", "hi", Length(1, 10), Length(5, 250), OneOf("nope"))
	vErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error = %v", err)
	}
	if vErr.Command != "tts" || vErr.Field != "text" || vErr.Constraint != "length 5..250" || vErr.Value != "hi" {
		t.Fatalf("unexpected error %+v", vErr)
	}
	if err := check("tts", "text", "hello", Length(5, 250)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5hr", 5 * time.Hour},
		{"30min", 30 * time.Minute},
		{"2day", 48 * time.Hour},
		{"0min", 0},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDuration(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "5", "5h", "1week", "400day", "99999999999999999999min"} {
		if _, err := ParseDuration(bad); err == nil {
			t.Fatalf("ParseDuration(%q) succeeded", bad)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		48 * time.Hour:   "2day",
		90 * time.Minute: "90min",
		3 * time.Hour:    "3hr",
		time.Minute:      "1min",
	}
	for d, want := range tests {
		if got := formatDuration(d); got != want {
			t.Fatalf("formatDuration(%s) = %q, want %q", d, got, want)
		}
		back, err := ParseDuration(want)
		if err != nil || back != d {
			t.Fatalf("ParseDuration(%q) = %s, %v", want, back, err)
		}
	}
}
