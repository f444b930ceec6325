// Package main provides the interactive player entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/app/catalog"
	"github.com/osa030/ytmusic/internal/app/command"
	"github.com/osa030/ytmusic/internal/app/notification"
	"github.com/osa030/ytmusic/internal/app/playback"
	"github.com/osa030/ytmusic/internal/app/queue"
	"github.com/osa030/ytmusic/internal/app/session"
	"github.com/osa030/ytmusic/internal/infra/config"
	"github.com/osa030/ytmusic/internal/infra/lastfm"
	"github.com/osa030/ytmusic/internal/infra/logger"
	"github.com/osa030/ytmusic/internal/infra/mpv"
	"github.com/osa030/ytmusic/internal/infra/ytdlp"
	"github.com/osa030/ytmusic/internal/ui"
)

var (
	app        = kingpin.New("ytmusic", "YouTube Music terminal player")
	configPath = app.Flag("config", "Path to config file (default: ~/.config/ytmusic/config.yaml)").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// play command (default)
	playCmd = app.Command("play", "Start the interactive player (default)").Default()

	// search command
	searchCmd   = app.Command("search", "Search and print results")
	searchKind  = searchCmd.Flag("kind", "Result kind").Short('k').Default("songs").Enum("songs", "albums", "playlists")
	searchQuery = searchCmd.Arg("query", "Search words").Required().Strings()

	// check command
	checkCmd = app.Command("check", "Check that mpv and yt-dlp are installed")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger, command-line flags win over the config file
	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = config.ExpandHome(*logfile)
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case checkCmd.FullCommand():
		if !checkDependencies(os.Stdout, cfg) {
			os.Exit(1)
		}
		ui.NewPrinter(os.Stdout).Success("mpv and yt-dlp are installed.")

	case searchCmd.FullCommand():
		if err := runSearch(ctx, cfg, *searchKind, strings.Join(*searchQuery, " ")); err != nil {
			command.Report(os.Stderr, err)
			os.Exit(1)
		}

	case playCmd.FullCommand():
		if !checkDependencies(os.Stdout, cfg) {
			os.Exit(1)
		}
		if err := run(ctx, cfg); err != nil {
			zlog.Error().Msgf("ytmusic: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// run executes the interactive player. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(ctx context.Context, cfg *config.Config) error {
	ytClient := ytdlp.New(ytdlp.Config{
		Path:    cfg.YTDLP.Path,
		Format:  cfg.YTDLP.Format,
		Timeout: cfg.YTDLP.Timeout(),
	})

	chain, err := catalog.NewProviderChainFromConfig(ctx, cfg, ytClient, catalog.NewSpotifyClient)
	if err != nil {
		return errors.Wrap(err, "failed to create search providers")
	}

	similar, err := newSimilarFinder(cfg)
	if err != nil {
		return err
	}

	player := mpv.NewPlayer(mpv.Config{
		Path:         cfg.Player.Path,
		SocketDir:    cfg.Player.SocketDir,
		ExtraArgs:    cfg.Player.ExtraArgs,
		StartTimeout: cfg.Player.StartTimeout(),
	})
	controller := playback.NewController(queue.New(), player, ytClient, playback.Config{
		Volume: cfg.Player.Volume,
	})
	registry := command.NewDefaultRegistry()
	dispatcher := command.NewDispatcher(registry, chain, similar, controller, command.Config{
		SearchLimit: cfg.Search.Limit,
		SeekStep:    cfg.Player.SeekStep(),
	})

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt(session.Status{}),
		HistoryFile:       cfg.History.File,
		HistoryLimit:      cfg.History.Limit,
		HistorySearchFold: true,
		AutoComplete:      completer(registry),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize prompt")
	}
	defer rl.Close()
	out := rl.Stdout()

	var notifications *notification.Manager
	if cfg.Remote.Addr != "" {
		notifications = notification.NewManager()
	}

	sessionMgr := session.NewManager(dispatcher, controller, player.Events(), out, session.Config{
		OnStatus: func(s session.Status) {
			rl.SetPrompt(prompt(s))
			rl.Refresh()
		},
		Notifications: notifications,
	})
	defer func() {
		if err := sessionMgr.Close(); err != nil {
			zlog.Warn().Msgf("ytmusic: failed to close player: %v", err)
		}
	}()

	if cfg.Remote.Addr != "" {
		server := startRemote(cfg, sessionMgr, notifications)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				zlog.Error().Msgf("remote: failed to shutdown server: %v", err)
			}
		}()
		// Ends open watch streams before the server shuts down
		defer notifications.Close()
	}

	printer := ui.NewPrinter(out)
	printer.Header()
	printer.Help(registry.HelpLines())

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readLoop(loopCtx, cancel, rl, sessionMgr)

	if err := sessionMgr.Run(loopCtx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		// Interrupted by a signal rather than "exit"
		printer.Goodbye()
	}
	return nil
}

// readLoop feeds prompt lines into the session until it quits.
func readLoop(ctx context.Context, cancel context.CancelFunc, rl *readline.Instance, sessionMgr *session.Manager) {
	defer cancel()
	out := rl.Stdout()

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			ui.NewPrinter(out).Warn("Use 'exit' to quit.")
			continue
		case errors.Is(err, io.EOF):
			line = "exit"
		case err != nil:
			zlog.Debug().Msgf("ytmusic: prompt closed: %v", err)
			return
		}

		quit, err := sessionMgr.Submit(ctx, line, out)
		if quit || errors.Is(err, session.ErrSessionNotRunning) || ctx.Err() != nil {
			return
		}
	}
}

func newSimilarFinder(cfg *config.Config) (command.SimilarFinder, error) {
	if cfg.LastFM.APIKey == "" {
		zlog.Info().Msg("ytmusic: Last.fm API key not set, similar songs disabled")
		return nil, nil
	}
	client, err := lastfm.New(lastfm.Config{APIKey: cfg.LastFM.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Last.fm client")
	}
	return catalog.NewSimilarFinder(client, cfg.LastFM.Limit), nil
}

func runSearch(ctx context.Context, cfg *config.Config, kind, query string) error {
	ytClient := ytdlp.New(ytdlp.Config{
		Path:    cfg.YTDLP.Path,
		Format:  cfg.YTDLP.Format,
		Timeout: cfg.YTDLP.Timeout(),
	})
	chain, err := catalog.NewProviderChainFromConfig(ctx, cfg, ytClient, catalog.NewSpotifyClient)
	if err != nil {
		return errors.Wrap(err, "failed to create search providers")
	}

	k := catalog.KindSongs
	switch kind {
	case "albums":
		k = catalog.KindAlbums
	case "playlists":
		k = catalog.KindPlaylists
	}

	results, err := chain.Search(ctx, query, k, cfg.Search.Limit)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)
	if results.IsEmpty() {
		printer.Warn("No results found.")
		return nil
	}
	heading := fmt.Sprintf("Search Results (%s):", results.Provider)
	if k == catalog.KindSongs {
		printer.Tracks(heading, results.Tracks)
	} else {
		printer.Playlists(heading, results.Playlists)
	}
	return nil
}
