package domain

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformYouTube Platform = "youtube"
	PlatformDiscord Platform = "discord"
	PlatformKick    Platform = "kick"
)

// ParsePlatform normalizes a platform name. The second return value is false
// for platforms the bot does not know about.
func ParsePlatform(raw string) (Platform, bool) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(raw))); p {
	case PlatformTwitch, PlatformYouTube, PlatformDiscord, PlatformKick:
		return p, true
	default:
		return "", false
	}
}

// ChatMessage is one ingested chat line. Adapters build it once and pass it
// by value; nothing downstream mutates it.
type ChatMessage struct {
	ID        string
	Platform  Platform
	ChannelID string
	UserID    string
	Username  string
	Text      string
	Timestamp time.Time

	// Level is resolved by the adapter from platform badges.
	Level ViewerLevel
}
