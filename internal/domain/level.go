package domain

import (
	"fmt"
	"strings"
)

// ViewerLevel is the privilege rank of a chat participant. Values are totally
// ordered; compare them with AtLeast or the usual integer operators.
type ViewerLevel int

const (
	LevelViewer ViewerLevel = iota
	LevelSubscriber
	LevelModerator
	LevelBroadcaster
)

var levelNames = map[ViewerLevel]string{
	LevelViewer:      "viewer",
	LevelSubscriber:  "subscriber",
	LevelModerator:   "moderator",
	LevelBroadcaster: "broadcaster",
}

func (l ViewerLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func (l ViewerLevel) AtLeast(required ViewerLevel) bool {
	return l >= required
}

func ParseViewerLevel(raw string) (ViewerLevel, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for level, name := range levelNames {
		if name == key {
			return level, nil
		}
	}
	switch key {
	case "sub":
		return LevelSubscriber, nil
	case "mod":
		return LevelModerator, nil
	case "owner", "streamer":
		return LevelBroadcaster, nil
	}
	return LevelViewer, fmt.Errorf("unknown viewer level %q", raw)
}

// LevelFromFlags maps the badge flags adapters read from the platform to the
// highest matching rank.
func LevelFromFlags(owner, moderator, subscriber bool) ViewerLevel {
	switch {
	case owner:
		return LevelBroadcaster
	case moderator:
		return LevelModerator
	case subscriber:
		return LevelSubscriber
	default:
		return LevelViewer
	}
}
