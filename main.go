package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"LiveBoard/internal/config"
	lbnet "LiveBoard/internal/net"
	"LiveBoard/internal/relay"
	"LiveBoard/internal/state"
	"LiveBoard/internal/ui"
)

const usage = `usage:
  liveboard [-config FILE]                  host a new room
  liveboard liveboard://host:port/ROOM      join a room
  liveboard relay [-config FILE]            run the relay only
  liveboard discover [-timeout 3s]          list relays on the local network
`

func main() {
	args := os.Args[1:]
	var err error
	switch {
	case len(args) > 0 && strings.HasPrefix(args[0], lbnet.URLScheme):
		err = runClient(args[0], args[1:])
	case len(args) > 0 && args[0] == "relay":
		err = runRelay(args[1:])
	case len(args) > 0 && args[0] == "discover":
		err = runDiscover(args[1:])
	case len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help"):
		fmt.Fprint(os.Stderr, usage)
	default:
		err = runHost(args)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// loadConfig parses the common flags, loads the config file and installs
// the default logger.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	path := fs.String("config", config.DefaultPath, "path to liveboard.toml")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	return cfg, nil
}

// runHost starts an in-process relay (unless one is configured), a fresh
// room and the board window.
func runHost(args []string) error {
	cfg, err := loadConfig(flag.NewFlagSet("host", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	slog.Info("starting as host")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relayHost := strings.TrimSuffix(strings.TrimPrefix(cfg.Client.RelayURL, lbnet.URLScheme), "/")
	if relayHost == "" {
		ln, err := net.Listen("tcp", cfg.Relay.Listen)
		if err != nil {
			return fmt.Errorf("failed to start relay on %s: %w", cfg.Relay.Listen, err)
		}
		port := ln.Addr().(*net.TCPAddr).Port
		relayHost = fmt.Sprintf("%s:%d", lbnet.OutgoingIP(), port)

		srv, err := newRelayServer(ctx, cfg)
		if err != nil {
			ln.Close()
			return err
		}
		go func() {
			if err := srv.Serve(ctx, ln); err != nil {
				slog.Error("relay stopped", "error", err)
			}
		}()
		if cfg.Relay.Advertise {
			defer advertise(port)()
		}
	}

	link := lbnet.Link{Host: relayHost, Room: state.NewRoomCode()}
	slog.Info("share link", "link", link.String())
	ui.RunApp(ui.Options{
		Title:         "LiveBoard " + link.Room,
		ShareLink:     link.String(),
		FrameInterval: cfg.Client.FrameInterval.Duration,
		Session:       cfg.SessionConfig(),
	}, lbnet.NewClient(link.WebSocketURL()))
	return nil
}

func runClient(raw string, args []string) error {
	cfg, err := loadConfig(flag.NewFlagSet("join", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	link, err := lbnet.ParseLink(raw)
	if err != nil {
		return err
	}
	slog.Info("starting as client", "relay", link.Host, "room", link.Room)
	ui.RunApp(ui.Options{
		Title:         "LiveBoard " + link.Room,
		FrameInterval: cfg.Client.FrameInterval.Duration,
		Session:       cfg.SessionConfig(),
	}, lbnet.NewClient(link.WebSocketURL()))
	return nil
}

func runRelay(args []string) error {
	cfg, err := loadConfig(flag.NewFlagSet("relay", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newRelayServer(ctx, cfg)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Relay.Listen)
	if err != nil {
		return fmt.Errorf("failed to start relay on %s: %w", cfg.Relay.Listen, err)
	}
	if cfg.Relay.Advertise {
		defer advertise(ln.Addr().(*net.TCPAddr).Port)()
	}
	return srv.Serve(ctx, ln)
}

func runDiscover(args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	timeout := fs.Duration("timeout", 3*time.Second, "how long to browse")
	if _, err := loadConfig(fs, args); err != nil {
		return err
	}
	relays, err := lbnet.Discover(*timeout)
	if err != nil {
		return err
	}
	if len(relays) == 0 {
		fmt.Println("no relays found")
		return nil
	}
	for _, r := range relays {
		fmt.Printf("%s\t%s%s/<ROOM>\n", r.Name, lbnet.URLScheme, r.Addr)
	}
	return nil
}

// newRelayServer picks the Redis broker when an address is configured and
// the in-process broker otherwise.
func newRelayServer(ctx context.Context, cfg config.Config) (*relay.Server, error) {
	var broker relay.Broker
	if cfg.Relay.RedisAddr != "" {
		rb, err := relay.NewRedisBroker(ctx, cfg.Relay.RedisAddr)
		if err != nil {
			return nil, err
		}
		slog.Info("connected to Redis", "addr", cfg.Relay.RedisAddr)
		broker = rb
	} else {
		broker = relay.NewLocalBroker()
	}
	hub := relay.NewHub(cfg.RelayConfig(), broker)
	go func() {
		<-ctx.Done()
		hub.Close()
	}()
	return relay.NewServer(hub), nil
}

// advertise announces the relay and returns a func that withdraws it.
func advertise(port int) func() {
	srv, err := lbnet.Advertise(port)
	if err != nil {
		slog.Warn("mDNS advertisement failed", "error", err)
		return func() {}
	}
	slog.Info("advertising relay over mDNS", "port", port)
	return func() { srv.Shutdown() }
}
