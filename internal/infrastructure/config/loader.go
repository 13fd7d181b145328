package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"catcmd/internal/domain"
)

const (
	DefaultWSAddr = "127.0.0.1:8089"
	DefaultDBPath = "./data/catcmd.db"
)

type Config struct {
	Twitch  TwitchConfig  `yaml:"twitch"`
	Kick    KickConfig    `yaml:"kick"`
	WS      WSConfig      `yaml:"ws"`
	Storage StorageConfig `yaml:"storage"`
	Bot     BotConfig     `yaml:"bot"`
}

type TwitchConfig struct {
	Username string   `yaml:"username" env:"TWITCH_BOT_USERNAME"`
	Token    string   `yaml:"oauth" env:"TWITCH_BOT_ACCESS_TOKEN"`
	Channels []string `yaml:"channels" env:"TWITCH_BOT_CHANNELS" envSeparator:","`
}

type KickConfig struct {
	Enabled           bool   `yaml:"enabled" env:"KICK_ENABLED"`
	AccessToken       string `yaml:"access_token" env:"KICK_BOT_TOKEN"`
	BroadcasterUserID int    `yaml:"broadcaster_user_id" env:"KICK_BROADCASTER_USER_ID"`
	ChatroomID        int    `yaml:"chatroom_id" env:"KICK_CHATROOM_ID"`
}

type WSConfig struct {
	Addr string `yaml:"addr" env:"CATCMD_WS_ADDR"`
	// Console accepts chat lines from websocket clients as broadcaster input.
	Console bool `yaml:"console" env:"CATCMD_WS_CONSOLE"`
}

type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path" env:"CATCMD_DB_PATH"`
}

type BotConfig struct {
	ReplyErrors bool `yaml:"reply_errors" env:"CATCMD_REPLY_ERRORS"`
	// Owners are "platform:user_id" entries treated as broadcaster
	// regardless of badges, e.g. "twitch:1234" or "kick:5678".
	Owners []string `yaml:"owners" env:"CATCMD_OWNERS" envSeparator:","`
}

// TwitchEnabled reports whether at least one Twitch channel is configured.
func (c *Config) TwitchEnabled() bool {
	return len(c.Twitch.Channels) > 0
}

// IsOwner reports whether userID on platform is a configured owner. Ids are
// compared exactly; display names never match.
func (c *Config) IsOwner(platform domain.Platform, userID string) bool {
	if userID == "" {
		return false
	}
	for _, owner := range c.Bot.Owners {
		p, id, err := parseOwner(owner)
		if err == nil && p == platform && id == userID {
			return true
		}
	}
	return false
}

func parseOwner(raw string) (domain.Platform, string, error) {
	name, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return "", "", fmt.Errorf("bot.owners entry %q must be platform:user_id", raw)
	}
	platform, known := domain.ParsePlatform(name)
	if !known {
		return "", "", fmt.Errorf("bot.owners entry %q: unknown platform %q", raw, name)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("bot.owners entry %q: empty user id", raw)
	}
	return platform, id, nil
}

// Platforms lists the chat platforms the bot connects to.
func (c *Config) Platforms() []domain.Platform {
	var out []domain.Platform
	if c.TwitchEnabled() {
		out = append(out, domain.PlatformTwitch)
	}
	if c.Kick.Enabled {
		out = append(out, domain.PlatformKick)
	}
	return out
}

// Load reads .env, then the YAML file at path when it is set, then the
// environment. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.WS.Addr == "" {
		c.WS.Addr = DefaultWSAddr
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = DefaultDBPath
	}
	c.Twitch.Channels = cleanChannels(c.Twitch.Channels)
}

func (c *Config) Validate() error {
	if c.TwitchEnabled() {
		if c.Twitch.Username == "" {
			return fmt.Errorf("twitch.username is required (or set TWITCH_BOT_USERNAME)")
		}
		if c.Twitch.Token == "" {
			return fmt.Errorf("twitch.oauth is required (or set TWITCH_BOT_ACCESS_TOKEN)")
		}
	}
	if c.Kick.Enabled {
		if c.Kick.ChatroomID <= 0 {
			return fmt.Errorf("kick.chatroom_id is required when kick is enabled")
		}
		if c.Kick.AccessToken != "" && c.Kick.BroadcasterUserID <= 0 {
			return fmt.Errorf("kick.broadcaster_user_id is required to send kick messages")
		}
	}
	for _, owner := range c.Bot.Owners {
		if _, _, err := parseOwner(owner); err != nil {
			return err
		}
	}
	if len(c.Platforms()) == 0 && !c.WS.Console {
		return fmt.Errorf("no chat source configured: set twitch channels, enable kick or the ws console")
	}
	return nil
}

func cleanChannels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ch := range in {
		ch = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
		if ch != "" {
			out = append(out, ch)
		}
	}
	return out
}
