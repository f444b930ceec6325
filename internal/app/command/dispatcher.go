package command

import (
	"context"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/app/catalog"
	"github.com/osa030/ytmusic/internal/app/playback"
	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/ui"
)

// Errors
var (
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSongsOnly          = errors.New("can only play songs directly")
	ErrSimilarUnavailable = errors.New("similar songs need a Last.fm API key")
	ErrQuit               = errors.New("quit")
)

// Catalog searches for songs, albums and playlists.
type Catalog interface {
	Search(ctx context.Context, query string, kind catalog.Kind, limit int) (catalog.Results, error)
	Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error)
}

// SimilarFinder finds songs similar to a seed track.
type SimilarFinder interface {
	Find(ctx context.Context, seed track.Track) (catalog.Results, error)
}

// Config represents dispatcher configuration.
type Config struct {
	SearchLimit int
	SeekStep    time.Duration
}

// Dispatcher runs prompt lines against the queue and the player controller.
// It keeps the last result list that numbered commands refer to.
// A Dispatcher is owned by the session loop and is not safe for concurrent use.
type Dispatcher struct {
	registry   *Registry
	catalog    Catalog
	similar    SimilarFinder // nil when Last.fm is not configured
	controller *playback.Controller
	config     Config

	results catalog.Results
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(registry *Registry, cat Catalog, similar SimilarFinder, controller *playback.Controller, config Config) *Dispatcher {
	if config.SearchLimit <= 0 {
		config.SearchLimit = 10
	}
	if config.SeekStep <= 0 {
		config.SeekStep = 10 * time.Second
	}
	return &Dispatcher{
		registry:   registry,
		catalog:    cat,
		similar:    similar,
		controller: controller,
		config:     config,
	}
}

// Registry returns the command registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Results returns the current result list.
func (d *Dispatcher) Results() catalog.Results {
	return d.results
}

// Execute runs one input line, writing its output to w.
// Unknown words are a song search for the whole line.
// It reports whether the session should end.
func (d *Dispatcher) Execute(ctx context.Context, line string, w io.Writer) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	p := ui.NewPrinter(w)

	word, arg := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		word, arg = line[:i], strings.TrimSpace(line[i:])
	}

	var err error
	switch cmd, ok := d.registry.Lookup(word); {
	case ok:
		zlog.Debug().Msgf("command: run: name=%s arg=%q", cmd.Name, arg)
		err = cmd.Handler(d, ctx, p, arg)
	case isSeekToken(word) && arg == "":
		delta, ok := parseSeek(word, d.config.SeekStep)
		if !ok {
			p.Warn("Usage: seek <±seconds>")
			break
		}
		err = d.seekBy(p, delta)
	default:
		zlog.Debug().Msgf("command: implicit search: query=%q", line)
		err = d.searchSongs(ctx, p, line)
	}

	if errors.Is(err, ErrQuit) {
		return true, nil
	}
	return false, err
}

// Report prints err for the user. Expected conditions are shown as notices.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	p := ui.NewPrinter(w)

	switch {
	case errors.Is(err, ErrSongsOnly):
		p.Warn("Can only play songs directly. Use 'open <n>' to list its songs.")
	case errors.Is(err, ErrInvalidSelection):
		p.Error(err)
	case errors.Is(err, playback.ErrNotPlaying):
		p.Warn("Nothing playing.")
	case errors.Is(err, playback.ErrEndOfQueue):
		p.Warn("End of queue.")
	case errors.Is(err, playback.ErrStartOfQueue):
		p.Warn("Beginning of queue.")
	case errors.Is(err, playback.ErrQueueEmpty):
		p.Warn("Queue is empty.")
	case errors.Is(err, playback.ErrNothingToPlay):
		p.Warn("No songs to play.")
	case errors.Is(err, playback.ErrNotPaused):
		p.Warn("Not paused.")
	default:
		p.Error(err)
	}
}
