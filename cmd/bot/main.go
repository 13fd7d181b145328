package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"catcmd/internal/app/events"
	"catcmd/internal/domain"
	"catcmd/internal/infrastructure/config"
	"catcmd/internal/infrastructure/persistence/sqlite"
	"catcmd/internal/infrastructure/ratelimit"
	kickadapter "catcmd/internal/interface/adapters/kick"
	twitchadapter "catcmd/internal/interface/adapters/twitch"
	"catcmd/internal/interface/api/ws"
	"catcmd/internal/interface/outs"
	"catcmd/internal/usecase/commands"
	"catcmd/internal/usecase/handle_message"
)

const cooldownPruneInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	registry, err := commands.BuiltinRegistry()
	if err != nil {
		log.Fatalf("commands: %v", err)
	}
	parser := commands.NewParser(registry)

	store, err := sqlite.NewCommandLogStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("sqlite: %v", err)
	}
	defer store.Close()

	bus := events.NewBus()
	defer bus.Close()
	publisher := events.NewPublisher(bus, registry)
	cooldowns := ratelimit.NewCooldowns()

	multiOut := outs.NewMultiSender()

	uc := handle_message.NewInteractor(
		multiOut,
		parser,
		publisher,
		handle_message.WithCooldowns(cooldowns),
		handle_message.WithHistory(store),
		handle_message.WithObserver(publisher),
		handle_message.WithErrorReplies(cfg.Bot.ReplyErrors),
	)

	handle := func(ctx context.Context, msg domain.ChatMessage) error {
		if cfg.IsOwner(msg.Platform, msg.UserID) {
			msg.Level = domain.LevelBroadcaster
		}
		if err := uc.Handle(ctx, msg); err != nil {
			publisher.ReportError(msg, err)
			return err
		}
		return nil
	}

	var wg sync.WaitGroup
	run := func(name string, start func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("%s error: %v", name, err)
			}
		}()
	}

	if cfg.TwitchEnabled() {
		twitchAd := twitchadapter.NewAdapter(twitchadapter.Config{
			Username:   cfg.Twitch.Username,
			OAuthToken: cfg.Twitch.Token,
			Channels:   cfg.Twitch.Channels,
		})
		twitchAd.SetHandler(handle)
		multiOut.Register(domain.PlatformTwitch, twitchAd)
		run("twitch adapter", twitchAd.Start)
	}

	if cfg.Kick.Enabled {
		kickAd := kickadapter.NewAdapter(kickadapter.Config{
			AccessToken:       cfg.Kick.AccessToken,
			BroadcasterUserID: cfg.Kick.BroadcasterUserID,
			ChatroomID:        cfg.Kick.ChatroomID,
		})
		kickAd.SetHandler(handle)
		multiOut.Register(domain.PlatformKick, kickAd)
		run("kick adapter", kickAd.Start)
	}

	wsServer := ws.NewServer(ws.Config{
		Addr:    cfg.WS.Addr,
		Console: cfg.WS.Console,
		Parser:  parser,
		History: store,
		Stats:   store,
	})
	if cfg.WS.Console {
		wsServer.SetHandler(handle)
		for _, p := range []domain.Platform{domain.PlatformTwitch, domain.PlatformKick} {
			if !slices.Contains(cfg.Platforms(), p) {
				multiOut.Register(p, outs.LogSender{})
			}
		}
	}
	run("ws server", wsServer.Start)

	wg.Add(1)
	go func() {
		defer wg.Done()
		wsServer.Relay(ctx, bus)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cooldownPruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				cooldowns.Prune(now)
			}
		}
	}()

	log.Printf("catcmd: %d commands loaded, platforms %v", len(registry.Descriptors()), cfg.Platforms())

	<-ctx.Done()
	wg.Wait()

	log.Println("catcmd: bot stopped")
}
