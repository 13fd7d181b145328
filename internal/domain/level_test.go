package domain

import "testing"

func TestViewerLevelOrder(t *testing.T) {
	order := []ViewerLevel{LevelViewer, LevelSubscriber, LevelModerator, LevelBroadcaster}
	for i := 1; i < len(order); i++ {
		if !order[i].AtLeast(order[i-1]) {
			t.Fatalf("%s should be at least %s", order[i], order[i-1])
		}
		if order[i-1].AtLeast(order[i]) {
			t.Fatalf("%s should be below %s", order[i-1], order[i])
		}
	}
}

func TestParseViewerLevel(t *testing.T) {
	tests := []struct {
		in   string
		want ViewerLevel
	}{
		{"viewer", LevelViewer},
		{" Moderator ", LevelModerator},
		{"mod", LevelModerator},
		{"sub", LevelSubscriber},
		{"broadcaster", LevelBroadcaster},
		{"owner", LevelBroadcaster},
	}
	for _, tt := range tests {
		got, err := ParseViewerLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseViewerLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseViewerLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseViewerLevel("admin"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelFromFlags(t *testing.T) {
	if got := LevelFromFlags(true, true, true); got != LevelBroadcaster {
		t.Fatalf("owner flags = %s", got)
	}
	if got := LevelFromFlags(false, true, true); got != LevelModerator {
		t.Fatalf("mod flags = %s", got)
	}
	if got := LevelFromFlags(false, false, true); got != LevelSubscriber {
		t.Fatalf("sub flags = %s", got)
	}
	if got := LevelFromFlags(false, false, false); got != LevelViewer {
		t.Fatalf("no flags = %s", got)
	}
	if got := ViewerLevel(9).String(); got != "level(9)" {
		t.Fatalf("unknown level string = %q", got)
	}
}

func TestParsePlatform(t *testing.T) {
	if p, ok := ParsePlatform(" YouTube "); !ok || p != PlatformYouTube {
		t.Fatalf("ParsePlatform youtube = %q, %v", p, ok)
	}
	if _, ok := ParsePlatform("myspace"); ok {
		t.Fatal("expected unknown platform")
	}
}
